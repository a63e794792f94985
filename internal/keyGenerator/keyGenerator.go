package keyGenerator

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type GeneratedECDSAKey struct {
	PublicKey *ecdsa.PublicKey
	Address   common.Address
	KeyId     string
}

// GetPublicKeyBytes returns the uncompressed 65 byte public key (0x04 prefixed)
func (gek *GeneratedECDSAKey) GetPublicKeyBytes() ([]byte, error) {
	if gek.PublicKey == nil {
		return nil, fmt.Errorf("public key is nil")
	}
	return crypto.FromECDSAPub(gek.PublicKey), nil
}

func (gek *GeneratedECDSAKey) GetPublicKeyHex() (string, error) {
	pubKeyBytes, err := gek.GetPublicKeyBytes()
	if err != nil {
		return "", fmt.Errorf("failed to get public key bytes: %w", err)
	}
	return hexutil.Encode(pubKeyBytes), nil
}

// IKeyGenerator manages secp256k1 keys and signs 32 byte digests with them.
// SignMessage returns r ‖ s ‖ v with low s and v in {27, 28}.
type IKeyGenerator interface {
	GenerateECDSAKey(ctx context.Context, keyName string, aliasName string) (*GeneratedECDSAKey, error)
	GetECDSAKeyById(ctx context.Context, keyId string) (*GeneratedECDSAKey, error)
	SignMessage(ctx context.Context, keyId string, digest []byte) ([]byte, error)
}
