package claim

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	// SignatureLength is the size of an r ‖ s ‖ v signature.
	SignatureLength = crypto.SignatureLength

	// recoveryIDOffset maps the raw recovery id {0,1} onto the {27,28} form
	// accepted by ecrecover and OpenZeppelin's ECDSA.recover.
	recoveryIDOffset = 27
)

var secp256k1N = crypto.S256().Params().N

// SignRawDigest signs a 32 byte digest as is, without the EIP-191 personal
// message prefix. The returned signature is r ‖ s ‖ v with low s and v in {27, 28}.
func SignRawDigest(digest []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	if err := validatePrivateKey(key); err != nil {
		return nil, err
	}
	if len(digest) != common.HashLength {
		return nil, errors.Wrapf(ErrSigning, "digest must be %d bytes, got %d", common.HashLength, len(digest))
	}

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, errors.Wrapf(ErrSigning, "ecdsa sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += recoveryIDOffset
	return sig, nil
}

// PersonalDigest is the EIP-191 version 0x45 hash of message:
// keccak256("\x19Ethereum Signed Message:\n" ‖ len(message) ‖ message).
func PersonalDigest(message []byte) common.Hash {
	return common.BytesToHash(accounts.TextHash(message))
}

// SignPersonal signs message the way eth_sign / personal_sign do. It is not
// valid for manager claims, which are verified against the raw digest.
func SignPersonal(message []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	digest := PersonalDigest(message)
	return SignRawDigest(digest.Bytes(), key)
}

// RecoverSigner returns the address whose key produced signature over digest.
func RecoverSigner(digest []byte, signature []byte) (common.Address, error) {
	if len(digest) != common.HashLength {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "digest must be %d bytes, got %d", common.HashLength, len(digest))
	}
	if err := validateSignature(signature); err != nil {
		return common.Address{}, err
	}

	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	sig[crypto.RecoveryIDOffset] -= recoveryIDOffset

	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "recover public key: %v", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// RecoverPersonalSigner is the counterpart of SignPersonal.
func RecoverPersonalSigner(message []byte, signature []byte) (common.Address, error) {
	digest := PersonalDigest(message)
	return RecoverSigner(digest.Bytes(), signature)
}

// NormalizeRecoveryID returns a copy of signature with a {0, 1} recovery id
// moved to {27, 28}. Signatures already in that form are returned unchanged.
func NormalizeRecoveryID(signature []byte) ([]byte, error) {
	if len(signature) != SignatureLength {
		return nil, errors.Wrapf(ErrInvalidSignature, "expected %d bytes, got %d", SignatureLength, len(signature))
	}

	out := make([]byte, SignatureLength)
	copy(out, signature)
	switch v := out[crypto.RecoveryIDOffset]; v {
	case 0, 1:
		out[crypto.RecoveryIDOffset] = v + recoveryIDOffset
	case recoveryIDOffset, recoveryIDOffset + 1:
	default:
		return nil, errors.Wrapf(ErrInvalidSignature, "unknown recovery id %d", v)
	}
	return out, nil
}

func validatePrivateKey(key *ecdsa.PrivateKey) error {
	if key == nil || key.D == nil || key.Curve == nil {
		return errors.Wrap(ErrSigning, "missing private key")
	}
	if key.Params().N.Cmp(secp256k1N) != 0 {
		return errors.Wrapf(ErrSigning, "private key is on %s, not secp256k1", key.Params().Name)
	}
	if key.D.Sign() <= 0 || key.D.Cmp(secp256k1N) >= 0 {
		return errors.Wrap(ErrSigning, "private key scalar out of range")
	}
	return nil
}

// validateSignature applies the same acceptance rules as OpenZeppelin's
// ECDSA.recover: 65 bytes, v in {27, 28}, r and s non-zero and s in the lower
// half of the curve order.
func validateSignature(sig []byte) error {
	if len(sig) != SignatureLength {
		return errors.Wrapf(ErrInvalidSignature, "expected %d bytes, got %d", SignatureLength, len(sig))
	}

	v := sig[crypto.RecoveryIDOffset]
	if v != recoveryIDOffset && v != recoveryIDOffset+1 {
		return errors.Wrapf(ErrInvalidSignature, "recovery id v must be 27 or 28, got %d", v)
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v-recoveryIDOffset, r, s, true) {
		return errors.Wrap(ErrInvalidSignature, "r or s out of range, or s is not canonical")
	}
	return nil
}
