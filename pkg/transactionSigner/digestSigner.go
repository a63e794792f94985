package transactionSigner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/util"
	"go.uber.org/zap"
)

// DigestTransactionSigner signs EIP-1559 transactions with any claim.IDigestSigner,
// so the same key source (raw key, mnemonic or KMS) signs claims and transactions.
type DigestTransactionSigner struct {
	backend EthBackend
	logger  *zap.Logger
	chainID *big.Int
	signer  claim.IDigestSigner
}

func NewDigestTransactionSigner(ctx context.Context, signer claim.IDigestSigner, backend EthBackend, logger *zap.Logger) (*DigestTransactionSigner, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &DigestTransactionSigner{
		backend: backend,
		logger:  logger,
		chainID: chainID,
		signer:  signer,
	}, nil
}

// NewPrivateKeySigner builds a DigestTransactionSigner over a hex encoded private key
func NewPrivateKeySigner(ctx context.Context, privateKey string, backend EthBackend, logger *zap.Logger) (*DigestTransactionSigner, error) {
	key, err := util.StringToECDSAPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	signer, err := claim.NewPrivateKeySigner(key)
	if err != nil {
		return nil, err
	}
	return NewDigestTransactionSigner(ctx, signer, backend, logger)
}

// GetTransactOpts returns NoSend options whose Signer passes the transaction through
// untouched. Signing happens in SignAndSendTransaction.
func (s *DigestTransactionSigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From:    s.signer.Address(),
		Context: ctx,
		NoSend:  true,
		Signer: func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}, nil
}

func (s *DigestTransactionSigner) GetFromAddress() common.Address {
	return s.signer.Address()
}

type feeParams struct {
	gasTipCap    *big.Int
	maxFeePerGas *big.Int
	baseFee      *big.Int
}

func (s *DigestTransactionSigner) suggestFees(ctx context.Context) (*feeParams, error) {
	fallbackGasTipCap := big.NewInt(1000000) // 0.001 gwei on L2s
	baseFeeMultiplier := int64(2)
	if config.IsEthereumL1(config.ChainId(s.chainID.Uint64())) {
		fallbackGasTipCap = big.NewInt(1500000000) // 1.5 gwei
		baseFeeMultiplier = 3
	}

	gasTipCap, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		s.logger.Sugar().Warnw("cannot get gasTipCap, using fallback",
			zap.Error(err),
		)
		gasTipCap = fallbackGasTipCap
	}

	header, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block header: %w", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}

	// basefee * multiplier + tip
	maxFeePerGas := new(big.Int).Add(
		new(big.Int).Mul(baseFee, big.NewInt(baseFeeMultiplier)),
		gasTipCap,
	)
	return &feeParams{gasTipCap: gasTipCap, maxFeePerGas: maxFeePerGas, baseFee: baseFee}, nil
}

func (s *DigestTransactionSigner) estimateGas(ctx context.Context, tx *types.Transaction, fees *feeParams) (uint64, error) {
	gasLimit, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      s.signer.Address(),
		To:        tx.To(),
		GasTipCap: fees.gasTipCap,
		GasFeeCap: fees.maxFeePerGas,
		Value:     tx.Value(),
		Data:      tx.Data(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return addGasBuffer(gasLimit), nil
}

func (s *DigestTransactionSigner) EstimateGasPriceAndLimit(ctx context.Context, tx *types.Transaction) (*big.Int, uint64, error) {
	fees, err := s.suggestFees(ctx)
	if err != nil {
		return nil, 0, err
	}
	gasLimit, err := s.estimateGas(ctx, tx, fees)
	if err != nil {
		return nil, 0, err
	}
	return fees.maxFeePerGas, gasLimit, nil
}

// SignAndSendTransaction rebuilds tx as an EIP-1559 transaction with fresh fees and
// nonce, signs it, sends it and waits for it to be mined. A nil To deploys a contract.
func (s *DigestTransactionSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	fees, err := s.suggestFees(ctx)
	if err != nil {
		return nil, err
	}
	gasLimit, err := s.estimateGas(ctx, tx, fees)
	if err != nil {
		return nil, err
	}

	// the incoming nonce may be a legitimate 0 or a placeholder, always ask the network
	nonce, err := s.backend.PendingNonceAt(ctx, s.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: fees.gasTipCap,
		GasFeeCap: fees.maxFeePerGas,
		Gas:       gasLimit,
		To:        tx.To(),
		Value:     tx.Value(),
		Data:      tx.Data(),
	})

	signedTx, err := s.signTransaction(ctx, unsigned)
	if err != nil {
		return nil, err
	}

	to := "<contract creation>"
	if signedTx.To() != nil {
		to = signedTx.To().Hex()
	}
	s.logger.Sugar().Infow("SignAndSendTransaction: sending transaction",
		"to", to,
		"maxPriorityFeePerGas", fees.gasTipCap.String(),
		"maxFeePerGas", fees.maxFeePerGas.String(),
		"baseFee", fees.baseFee.String(),
		"gasLimit", gasLimit,
		"nonce", nonce,
		"txHash", signedTx.Hash().Hex(),
	)

	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, s.backend, signedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction receipt: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		s.logger.Sugar().Errorw("SignAndSendTransaction: transaction failed",
			"txHash", receipt.TxHash.Hex(),
			"status", receipt.Status,
			"gasUsed", receipt.GasUsed,
		)
		return nil, fmt.Errorf("transaction %s failed with status %d", receipt.TxHash.Hex(), receipt.Status)
	}

	s.logger.Sugar().Infow("SignAndSendTransaction: transaction succeeded",
		"txHash", receipt.TxHash.Hex(),
		"gasUsed", receipt.GasUsed,
		"blockNumber", receipt.BlockNumber,
	)
	return receipt, nil
}

func (s *DigestTransactionSigner) signTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	txSigner := types.LatestSignerForChainID(s.chainID)
	hash := txSigner.Hash(tx)

	sig, err := s.signer.SignDigest(ctx, hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("signer returned %d byte signature", len(sig))
	}

	// transaction signatures carry the raw {0, 1} recovery id
	raw := make([]byte, crypto.SignatureLength)
	copy(raw, sig)
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}

	signed, err := tx.WithSignature(txSigner, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}
	return signed, nil
}

// addGasBuffer adds 20% to an estimated gas limit
func addGasBuffer(gasLimit uint64) uint64 {
	return gasLimit + gasLimit/5
}
