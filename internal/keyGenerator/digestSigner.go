package keyGenerator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/claim"
)

// DigestSigner exposes a single key of an IKeyGenerator as a claim.IDigestSigner.
type DigestSigner struct {
	generator IKeyGenerator
	keyId     string
	address   common.Address
}

func NewDigestSigner(ctx context.Context, generator IKeyGenerator, keyId string) (*DigestSigner, error) {
	key, err := generator.GetECDSAKeyById(ctx, keyId)
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", keyId, err)
	}
	return &DigestSigner{
		generator: generator,
		keyId:     keyId,
		address:   key.Address,
	}, nil
}

func (d *DigestSigner) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	sig, err := d.generator.SignMessage(ctx, d.keyId, digest)
	if err != nil {
		return nil, err
	}
	return claim.NormalizeRecoveryID(sig)
}

func (d *DigestSigner) Address() common.Address {
	return d.address
}

func (d *DigestSigner) KeyId() string {
	return d.keyId
}
