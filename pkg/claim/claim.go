package claim

import (
	"bytes"
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/pkg/errors"
)

// IDigestSigner produces raw digest signatures in the form SignRawDigest
// returns. Implementations backed by remote key stores must normalize their
// recovery id to {27, 28}.
type IDigestSigner interface {
	SignDigest(ctx context.Context, digest []byte) ([]byte, error)
	Address() common.Address
}

// PrivateKeySigner is an IDigestSigner holding a secp256k1 key in memory.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewPrivateKeySigner(key *ecdsa.PrivateKey) (*PrivateKeySigner, error) {
	if err := validatePrivateKey(key); err != nil {
		return nil, err
	}
	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *PrivateKeySigner) SignDigest(_ context.Context, digest []byte) ([]byte, error) {
	return SignRawDigest(digest, s.key)
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// ManagerClaim is the portable form of a signed manager claim. Message and
// Digest are informational; verification always rebuilds them from TokenID
// and Manager.
type ManagerClaim struct {
	TokenID   types.TokenID   `json:"tokenId"`
	Manager   common.Address  `json:"manager"`
	Message   hexutil.Bytes   `json:"message"`
	Digest    common.Hash     `json:"digest"`
	Signature hexutil.Bytes   `json:"signature,omitempty"`
	Signer    *common.Address `json:"signer,omitempty"`
}

func NewManagerClaim(tokenID types.TokenID, manager common.Address) *ManagerClaim {
	message := BuildManagerClaimMessageForTokenID(tokenID, manager)
	return &ManagerClaim{
		TokenID: tokenID,
		Manager: manager,
		Message: message,
		Digest:  Digest(message),
	}
}

// Sign signs the claim digest with signer and records the signature. The
// signature must recover to signer.Address().
func (c *ManagerClaim) Sign(ctx context.Context, signer IDigestSigner) error {
	message := BuildManagerClaimMessageForTokenID(c.TokenID, c.Manager)
	digest := Digest(message)

	sig, err := signer.SignDigest(ctx, digest.Bytes())
	if err != nil {
		return errors.Wrap(err, "failed to sign manager claim digest")
	}

	recovered, err := RecoverSigner(digest.Bytes(), sig)
	if err != nil {
		return errors.Wrap(err, "signer returned an unusable signature")
	}
	expected := signer.Address()
	if recovered != expected {
		return errors.Wrapf(ErrSigning, "signature recovers to %s, expected %s", recovered.Hex(), expected.Hex())
	}

	c.Message = message
	c.Digest = digest
	c.Signature = sig
	c.Signer = &expected
	return nil
}

// Verify checks the claim signature against expectedSigner.
func (c *ManagerClaim) Verify(expectedSigner common.Address) (bool, error) {
	if len(c.Signature) == 0 {
		return false, errors.Wrap(ErrInvalidSignature, "claim is not signed")
	}
	return Verify(c.TokenID.Big(), c.Manager.Bytes(), c.Signature, expectedSigner)
}

// CheckConsistency reports an error when the embedded message or digest does
// not match TokenID and Manager.
func (c *ManagerClaim) CheckConsistency() error {
	message := BuildManagerClaimMessageForTokenID(c.TokenID, c.Manager)
	if len(c.Message) > 0 && !bytes.Equal(c.Message, message) {
		return errors.Wrapf(ErrInconsistentClaim, "embedded message %s does not match token id %s and manager %s",
			c.Message.String(), c.TokenID.String(), c.Manager.Hex())
	}
	if c.Digest != (common.Hash{}) && c.Digest != Digest(message) {
		return errors.Wrapf(ErrInconsistentClaim, "embedded digest %s does not match the manager claim message", c.Digest.Hex())
	}
	return nil
}
