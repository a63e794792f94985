package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
)

func (cc *ContractCaller) GetMintState(ctx context.Context) (config.MintState, error) {
	registry, err := cc.registry()
	if err != nil {
		return "", err
	}

	raw, err := registry.GetMintState(callOpts(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get mint state: %w", err)
	}
	return config.ConvertSolidityEnumToMintState(raw)
}

func (cc *ContractCaller) SetMintState(ctx context.Context, state config.MintState) (*ethereumTypes.Receipt, error) {
	registry, err := cc.registry()
	if err != nil {
		return nil, err
	}
	raw, err := state.Uint8()
	if err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := registry.SetMintState(txOpts, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Setting mint state",
		"registry", registry.Address().Hex(),
		"mintState", state,
		"enum", raw,
	)
	return cc.signAndSendTransaction(ctx, tx, "SetMintState")
}

func (cc *ContractCaller) OwnerOf(ctx context.Context, tokenID types.TokenID) (common.Address, error) {
	registry, err := cc.registry()
	if err != nil {
		return common.Address{}, err
	}

	owner, err := registry.OwnerOf(callOpts(ctx), tokenID.Big())
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get owner of token %s: %w", tokenID, err)
	}
	return owner, nil
}

func (cc *ContractCaller) TotalSupply(ctx context.Context) (*big.Int, error) {
	registry, err := cc.registry()
	if err != nil {
		return nil, err
	}

	supply, err := registry.TotalSupply(callOpts(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get total supply: %w", err)
	}
	return supply, nil
}

func (cc *ContractCaller) GetListStorageLocation(ctx context.Context, tokenID types.TokenID) (*types.ListStorageLocation, error) {
	registry, err := cc.registry()
	if err != nil {
		return nil, err
	}

	raw, err := registry.GetListStorageLocation(callOpts(ctx), tokenID.Big())
	if err != nil {
		return nil, fmt.Errorf("failed to get list storage location of token %s: %w", tokenID, err)
	}
	location, err := types.DecodeListStorageLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("token %s has an unreadable list storage location: %w", tokenID, err)
	}
	return location, nil
}

// Mint mints a list NFT to the signer pointing at location.
func (cc *ContractCaller) Mint(ctx context.Context, location *types.ListStorageLocation) (*ethereumTypes.Receipt, error) {
	registry, err := cc.registry()
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("list storage location is required")
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := registry.Mint(txOpts, location.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Minting list",
		"registry", registry.Address().Hex(),
		"listStorageLocation", location.String(),
	)
	return cc.signAndSendTransaction(ctx, tx, "Mint")
}

func (cc *ContractCaller) SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*ethereumTypes.Receipt, error) {
	registry, err := cc.registry()
	if err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := registry.SetApprovalForAll(txOpts, operator, approved)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return cc.signAndSendTransaction(ctx, tx, "SetApprovalForAll")
}
