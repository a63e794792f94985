package claim

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Verify reports whether signature over the manager claim message for
// (tokenID, manager) was produced by expectedSigner, the address that holds
// claim authority over tokenID. Looking that address up (for example through
// the registry's ownerOf) is the caller's job.
//
// A well-formed signature from another key yields (false, nil). Malformed
// signatures fail with ErrInvalidSignature and bad inputs with
// ErrTokenIDOutOfRange or ErrInvalidManagerAddress.
func Verify(tokenID *big.Int, manager []byte, signature []byte, expectedSigner common.Address) (bool, error) {
	digest, err := ManagerClaimDigest(tokenID, manager)
	if err != nil {
		return false, err
	}

	recovered, err := RecoverSigner(digest.Bytes(), signature)
	if err != nil {
		return false, err
	}
	return recovered == expectedSigner, nil
}
