package claim

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/pkg/errors"
)

// MessageLength is the fixed size of a manager claim message:
//
//	0x19 ‖ 0x00 ‖ "EFP" ‖ tokenId (32 bytes, big endian) ‖ "manager" ‖ manager (20 bytes)
//
// which is abi.encodePacked(hex"1900", "EFP", tokenId, "manager", manager) in Solidity.
const MessageLength = 64

const (
	signedDataMarker byte = 0x19
	versionMarker    byte = 0x00
)

var (
	domainSeparator = []byte("EFP")
	managerAction   = []byte("manager")
)

// BuildManagerClaimMessage returns the canonical message a list holder signs to
// appoint manager for tokenID.
func BuildManagerClaimMessage(tokenID *big.Int, manager []byte) ([]byte, error) {
	id, err := types.TokenIDFromBig(tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token id")
	}
	if len(manager) != common.AddressLength {
		return nil, errors.Wrapf(ErrInvalidManagerAddress, "got %d bytes", len(manager))
	}
	return BuildManagerClaimMessageForTokenID(id, common.BytesToAddress(manager)), nil
}

// BuildManagerClaimMessageForTokenID is BuildManagerClaimMessage for inputs that are already canonical.
func BuildManagerClaimMessageForTokenID(tokenID types.TokenID, manager common.Address) []byte {
	id := tokenID.Bytes32()

	msg := make([]byte, 0, MessageLength)
	msg = append(msg, signedDataMarker, versionMarker)
	msg = append(msg, domainSeparator...)
	msg = append(msg, id[:]...)
	msg = append(msg, managerAction...)
	msg = append(msg, manager.Bytes()...)
	return msg
}

// Digest is the keccak256 hash of message.
func Digest(message []byte) common.Hash {
	return crypto.Keccak256Hash(message)
}

// ManagerClaimDigest builds the manager claim message for (tokenID, manager) and returns its digest.
func ManagerClaimDigest(tokenID *big.Int, manager []byte) (common.Hash, error) {
	msg, err := BuildManagerClaimMessage(tokenID, manager)
	if err != nil {
		return common.Hash{}, err
	}
	return Digest(msg), nil
}
