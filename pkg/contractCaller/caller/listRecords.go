package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
)

func (cc *ContractCaller) GetListManager(ctx context.Context, nonce *big.Int) (common.Address, error) {
	records, err := cc.records()
	if err != nil {
		return common.Address{}, err
	}
	if err := requireNonce(nonce); err != nil {
		return common.Address{}, err
	}

	manager, err := records.GetListManager(callOpts(ctx), nonce)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get list manager for nonce %s: %w", nonce, err)
	}
	return manager, nil
}

// ClaimListManager claims the manager role of an unclaimed slot for the signer.
func (cc *ContractCaller) ClaimListManager(ctx context.Context, nonce *big.Int) (*ethereumTypes.Receipt, error) {
	records, err := cc.records()
	if err != nil {
		return nil, err
	}
	if err := requireNonce(nonce); err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := records.ClaimListManager(txOpts, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return cc.signAndSendTransaction(ctx, tx, "ClaimListManager")
}

func (cc *ContractCaller) ClaimListManagerForAddress(ctx context.Context, nonce *big.Int, manager common.Address) (*ethereumTypes.Receipt, error) {
	records, err := cc.records()
	if err != nil {
		return nil, err
	}
	if err := requireNonce(nonce); err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := records.ClaimListManagerForAddress(txOpts, nonce, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Claiming list manager",
		"records", records.Address().Hex(),
		"nonce", nonce.String(),
		"manager", manager.Hex(),
	)
	return cc.signAndSendTransaction(ctx, tx, "ClaimListManagerForAddress")
}

func (cc *ContractCaller) SetListManager(ctx context.Context, nonce *big.Int, manager common.Address) (*ethereumTypes.Receipt, error) {
	records, err := cc.records()
	if err != nil {
		return nil, err
	}
	if err := requireNonce(nonce); err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := records.SetListManager(txOpts, nonce, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Setting list manager",
		"records", records.Address().Hex(),
		"nonce", nonce.String(),
		"manager", manager.Hex(),
	)
	return cc.signAndSendTransaction(ctx, tx, "SetListManager")
}
