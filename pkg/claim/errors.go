package claim

import (
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/pkg/errors"
)

// Every failure returned by this package wraps one of these, so callers can
// classify it with errors.Is.
var (
	// ErrTokenIDOutOfRange is returned when a token id is negative or does not fit in 256 bits.
	ErrTokenIDOutOfRange = types.ErrTokenIDOutOfRange

	// ErrInvalidManagerAddress is returned when a manager address is not exactly 20 bytes.
	ErrInvalidManagerAddress = errors.New("manager address must be 20 bytes")

	// ErrSigning is returned when a key or digest cannot be used to produce a signature.
	ErrSigning = errors.New("signing failed")

	// ErrInvalidSignature is returned when a signature is malformed or no public key can be recovered from it.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInconsistentClaim is returned when a claim bundle's embedded message or digest
	// disagrees with its token id and manager.
	ErrInconsistentClaim = errors.New("inconsistent manager claim")
)
