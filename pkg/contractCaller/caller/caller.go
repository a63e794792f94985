package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/contracts"
	"github.com/ethereumfollowprotocol/efp-go/pkg/transactionSigner"
	"go.uber.org/zap"
)

type ContractCaller struct {
	backend   bind.ContractBackend
	signer    transactionSigner.ITransactionSigner
	logger    *zap.Logger
	addresses *config.EFPContractAddresses

	listRegistry *contracts.EFPListRegistry
	listRecords  *contracts.EFPListRecords
}

// NewContractCaller binds the configured EFP contracts. signer may be nil, in which
// case every state changing call fails.
func NewContractCaller(
	backend bind.ContractBackend,
	signer transactionSigner.ITransactionSigner,
	addresses *config.EFPContractAddresses,
	logger *zap.Logger,
) (*ContractCaller, error) {
	if addresses == nil {
		addresses = &config.EFPContractAddresses{}
	}
	logger.Sugar().Debugw("Using EFP contracts",
		zap.Any("contracts", addresses),
	)

	cc := &ContractCaller{
		backend:   backend,
		signer:    signer,
		logger:    logger,
		addresses: addresses,
	}

	byName := addresses.ByName()
	if addr, ok := byName[config.ContractName_ListRegistry]; ok {
		registry, err := contracts.NewEFPListRegistry(addr, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create list registry contract instance: %w", err)
		}
		cc.listRegistry = registry
	}
	if addr, ok := byName[config.ContractName_ListRecords]; ok {
		records, err := contracts.NewEFPListRecords(addr, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create list records contract instance: %w", err)
		}
		cc.listRecords = records
	}
	return cc, nil
}

func (cc *ContractCaller) registry() (*contracts.EFPListRegistry, error) {
	if cc.listRegistry == nil {
		return nil, fmt.Errorf("no %s address configured", config.ContractName_ListRegistry)
	}
	return cc.listRegistry, nil
}

func (cc *ContractCaller) records() (*contracts.EFPListRecords, error) {
	if cc.listRecords == nil {
		return nil, fmt.Errorf("no %s address configured", config.ContractName_ListRecords)
	}
	return cc.listRecords, nil
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func requireNonce(nonce *big.Int) error {
	if nonce == nil || nonce.Sign() < 0 {
		return fmt.Errorf("list nonce must be a non-negative integer")
	}
	return nil
}

// ListRecordsAddress returns the configured EFPListRecords address, or the zero address
func (cc *ContractCaller) ListRecordsAddress() common.Address {
	if cc.listRecords == nil {
		return common.Address{}
	}
	return cc.listRecords.Address()
}
