package transactionSigner

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anvilKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var anvilAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// fakeBackend mines every transaction it receives into its own block
type fakeBackend struct {
	mu         sync.Mutex
	chainID    *big.Int
	baseFee    *big.Int
	tipErr     error
	gasUsed    uint64
	nonce      uint64
	failStatus bool
	sent       []*types.Transaction
	receipts   map[common.Hash]*types.Receipt
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:  big.NewInt(31337),
		baseFee:  big.NewInt(1000000000),
		gasUsed:  50000,
		nonce:    7,
		receipts: map[common.Hash]*types.Receipt{},
	}
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	if f.tipErr != nil {
		return nil, f.tipErr
	}
	return big.NewInt(2000000000), nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gasUsed, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := types.ReceiptStatusSuccessful
	if f.failStatus {
		status = types.ReceiptStatusFailed
	}
	receipt := &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		GasUsed:     f.gasUsed,
		BlockNumber: big.NewInt(int64(101 + len(f.sent))),
	}
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(anvilAddress, tx.Nonce())
	}
	f.sent = append(f.sent, tx)
	f.receipts[tx.Hash()] = receipt
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func newTestSigner(t *testing.T, backend *fakeBackend) *DigestTransactionSigner {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: true})
	require.NoError(t, err)
	s, err := NewPrivateKeySigner(context.Background(), anvilKeyHex, backend, l)
	require.NoError(t, err)
	return s
}

func Test_DigestTransactionSigner(t *testing.T) {
	ctx := context.Background()
	to := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	t.Run("Should sign and send a call transaction", func(t *testing.T) {
		backend := newFakeBackend()
		signer := newTestSigner(t, backend)
		assert.Equal(t, anvilAddress, signer.GetFromAddress())

		opts, err := signer.GetTransactOpts(ctx)
		require.NoError(t, err)
		assert.True(t, opts.NoSend)
		assert.Equal(t, anvilAddress, opts.From)

		unsigned := types.NewTx(&types.LegacyTx{To: &to, Data: []byte{0xf1, 0x1c, 0xb0, 0xaf}})
		passthrough, err := opts.Signer(anvilAddress, unsigned)
		require.NoError(t, err)
		assert.Same(t, unsigned, passthrough)

		receipt, err := signer.SignAndSendTransaction(ctx, unsigned)
		require.NoError(t, err)
		require.Len(t, backend.sent, 1)

		sent := backend.sent[0]
		assert.Equal(t, receipt.TxHash, sent.Hash())
		assert.Equal(t, uint8(types.DynamicFeeTxType), sent.Type())
		assert.Equal(t, uint64(7), sent.Nonce())
		assert.Equal(t, uint64(60000), sent.Gas())
		assert.Equal(t, &to, sent.To())
		assert.Equal(t, unsigned.Data(), sent.Data())
		// 1 gwei base fee * 3 + 2 gwei tip on an L1 chain id
		assert.Equal(t, big.NewInt(5000000000), sent.GasFeeCap())

		sender, err := types.Sender(types.LatestSignerForChainID(backend.chainID), sent)
		require.NoError(t, err)
		assert.Equal(t, anvilAddress, sender)
	})

	t.Run("Should deploy contracts when To is nil", func(t *testing.T) {
		backend := newFakeBackend()
		signer := newTestSigner(t, backend)

		receipt, err := signer.SignAndSendTransaction(ctx, types.NewTx(&types.LegacyTx{Data: []byte{0x60, 0x80}}))
		require.NoError(t, err)
		assert.Nil(t, backend.sent[0].To())
		assert.Equal(t, crypto.CreateAddress(anvilAddress, 7), receipt.ContractAddress)
	})

	t.Run("Should fail on reverted receipts", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failStatus = true
		signer := newTestSigner(t, backend)

		_, err := signer.SignAndSendTransaction(ctx, types.NewTx(&types.LegacyTx{To: &to}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed with status 0")
	})

	t.Run("Should fall back when the tip cap is unavailable", func(t *testing.T) {
		backend := newFakeBackend()
		backend.chainID = big.NewInt(10)
		backend.tipErr = fmt.Errorf("method not found")
		signer := newTestSigner(t, backend)

		feeCap, gasLimit, err := signer.EstimateGasPriceAndLimit(ctx, types.NewTx(&types.LegacyTx{To: &to}))
		require.NoError(t, err)
		// 1 gwei base fee * 2 + 0.001 gwei fallback tip on an L2 chain id
		assert.Equal(t, big.NewInt(2001000000), feeCap)
		assert.Equal(t, uint64(60000), gasLimit)
	})

	t.Run("Should reject malformed private keys", func(t *testing.T) {
		_, err := NewPrivateKeySigner(ctx, "0xdeadbeef", newFakeBackend(), nil)
		require.Error(t, err)
	})
}

func Test_addGasBuffer(t *testing.T) {
	assert.Equal(t, uint64(0), addGasBuffer(0))
	assert.Equal(t, uint64(120), addGasBuffer(100))
	assert.Equal(t, uint64(25200), addGasBuffer(21000))
}
