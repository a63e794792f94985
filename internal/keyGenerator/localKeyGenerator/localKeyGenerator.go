package localKeyGenerator

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/internal/keyGenerator"
	"github.com/ethereumfollowprotocol/efp-go/pkg/accounts"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
	"github.com/ethereumfollowprotocol/efp-go/pkg/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type keyEntry struct {
	privateKey *ecdsa.PrivateKey
	keyName    string
	aliasName  string
	address    common.Address
}

func (e *keyEntry) toGeneratedKey(keyId string) *keyGenerator.GeneratedECDSAKey {
	return &keyGenerator.GeneratedECDSAKey{
		PublicKey: &e.privateKey.PublicKey,
		Address:   e.address,
		KeyId:     keyId,
	}
}

// LocalKeyGenerator keeps secp256k1 keys in process memory. It backs the CLI
// when signing with a raw private key or a mnemonic, and stands in for KMS in tests.
type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyEntry // keyId -> keyEntry
	mu       sync.RWMutex
}

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger,
		keyStore: make(map[string]*keyEntry),
	}
}

func newKeyId() string {
	return fmt.Sprintf("local-key-%s", uuid.New().String())
}

func (l *LocalKeyGenerator) GenerateECDSAKey(ctx context.Context, keyName string, aliasName string) (*keyGenerator.GeneratedECDSAKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	keyId := newKeyId()
	if err := l.LoadPrivateKey(keyId, privateKey, keyName, aliasName); err != nil {
		return nil, err
	}
	return l.GetECDSAKeyById(ctx, keyId)
}

func (l *LocalKeyGenerator) GetECDSAKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedECDSAKey, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}

	l.logger.Debug("Retrieved ECDSA key by ID",
		zap.String("keyId", keyId),
		zap.String("address", entry.address.String()),
	)
	return entry.toGeneratedKey(keyId), nil
}

func (l *LocalKeyGenerator) SignMessage(ctx context.Context, keyId string, digest []byte) ([]byte, error) {
	l.mu.RLock()
	entry, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}

	signature, err := claim.SignRawDigest(digest, entry.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest with key %s: %w", keyId, err)
	}

	l.logger.Debug("Signed digest with ECDSA key",
		zap.String("keyId", keyId),
		zap.Int("digestLen", len(digest)),
		zap.Int("signatureLen", len(signature)),
	)
	return signature, nil
}

// LoadPrivateKey adds an existing private key to the key store under keyId.
func (l *LocalKeyGenerator) LoadPrivateKey(keyId string, privateKey *ecdsa.PrivateKey, keyName string, aliasName string) error {
	if privateKey == nil {
		return fmt.Errorf("private key cannot be nil")
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.keyStore[keyId]; exists {
		return fmt.Errorf("key with ID %s already exists", keyId)
	}

	l.keyStore[keyId] = &keyEntry{
		privateKey: privateKey,
		keyName:    keyName,
		aliasName:  aliasName,
		address:    address,
	}

	l.logger.Info("Loaded private key into store",
		zap.String("keyId", keyId),
		zap.String("keyName", keyName),
		zap.String("aliasName", aliasName),
		zap.String("address", address.String()),
	)
	return nil
}

// ImportPrivateKeyHex loads a hex encoded private key, optionally 0x prefixed,
// under a freshly generated key id.
func (l *LocalKeyGenerator) ImportPrivateKeyHex(privateKeyHex string, keyName string, aliasName string) (*keyGenerator.GeneratedECDSAKey, error) {
	privateKey, err := util.StringToECDSAPrivateKey(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key from hex: %w", err)
	}

	keyId := newKeyId()
	if err := l.LoadPrivateKey(keyId, privateKey, keyName, aliasName); err != nil {
		return nil, err
	}
	return l.GetECDSAKeyById(context.Background(), keyId)
}

// ImportMnemonic loads the account at index of mnemonic under a freshly generated key id.
func (l *LocalKeyGenerator) ImportMnemonic(mnemonic string, index uint32, keyName string, aliasName string) (*keyGenerator.GeneratedECDSAKey, error) {
	account, err := accounts.DeriveAccount(mnemonic, index)
	if err != nil {
		return nil, err
	}

	keyId := newKeyId()
	if err := l.LoadPrivateKey(keyId, account.PrivateKey, keyName, aliasName); err != nil {
		return nil, err
	}
	return l.GetECDSAKeyById(context.Background(), keyId)
}

// PrivateKey returns the raw key for keyId. Transaction signing needs it; KMS keys have no equivalent.
func (l *LocalKeyGenerator) PrivateKey(keyId string) (*ecdsa.PrivateKey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, exists := l.keyStore[keyId]
	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}
	return entry.privateKey, nil
}

func (l *LocalKeyGenerator) GetKeyCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keyStore)
}

func (l *LocalKeyGenerator) KeyExists(keyId string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.keyStore[keyId]
	return exists
}

// GetKeyByAlias returns the first key with the given alias, or nil.
func (l *LocalKeyGenerator) GetKeyByAlias(alias string) *keyGenerator.GeneratedECDSAKey {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for keyId, entry := range l.keyStore {
		if entry.aliasName == alias {
			return entry.toGeneratedKey(keyId)
		}
	}
	return nil
}
