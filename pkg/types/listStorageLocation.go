package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const (
	ListStorageLocationVersion1 uint8 = 1

	// ListStorageLocationTypeEVM points at a slot of an EFPListRecords contract
	ListStorageLocationTypeEVM uint8 = 1

	evmListStorageLocationLength = 2 + 32 + common.AddressLength + 32
)

// ListStorageLocation is the decoded form of the bytes EFPListRegistry stores per token:
// version ‖ locationType ‖ data. For EVM locations data is chainId[32] ‖ contract[20] ‖ slot[32].
type ListStorageLocation struct {
	Version      uint8
	LocationType uint8
	ChainID      *big.Int
	Contract     common.Address
	Slot         *big.Int
}

func NewEVMListStorageLocation(chainID uint64, contract common.Address, slot *big.Int) (*ListStorageLocation, error) {
	if slot == nil || slot.Sign() < 0 || slot.BitLen() > 256 {
		return nil, fmt.Errorf("slot must fit in 256 unsigned bits")
	}
	return &ListStorageLocation{
		Version:      ListStorageLocationVersion1,
		LocationType: ListStorageLocationTypeEVM,
		ChainID:      new(big.Int).SetUint64(chainID),
		Contract:     contract,
		Slot:         new(big.Int).Set(slot),
	}, nil
}

// DecodeListStorageLocation parses a version 1 EVM list storage location.
func DecodeListStorageLocation(b []byte) (*ListStorageLocation, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("list storage location too short: %d bytes", len(b))
	}
	if b[0] != ListStorageLocationVersion1 {
		return nil, fmt.Errorf("unsupported list storage location version %d", b[0])
	}
	if b[1] != ListStorageLocationTypeEVM {
		return nil, fmt.Errorf("unsupported list storage location type %d", b[1])
	}
	if len(b) != evmListStorageLocationLength {
		return nil, fmt.Errorf("EVM list storage location must be %d bytes, got %d", evmListStorageLocationLength, len(b))
	}

	data := b[2:]
	return &ListStorageLocation{
		Version:      b[0],
		LocationType: b[1],
		ChainID:      new(big.Int).SetBytes(data[:32]),
		Contract:     common.BytesToAddress(data[32 : 32+common.AddressLength]),
		Slot:         new(big.Int).SetBytes(data[32+common.AddressLength:]),
	}, nil
}

func (l *ListStorageLocation) Bytes() []byte {
	out := make([]byte, 0, evmListStorageLocationLength)
	out = append(out, l.Version, l.LocationType)

	chainID, _ := uint256.FromBig(l.ChainID)
	slot, _ := uint256.FromBig(l.Slot)
	chainBytes := chainID.Bytes32()
	slotBytes := slot.Bytes32()

	out = append(out, chainBytes[:]...)
	out = append(out, l.Contract.Bytes()...)
	out = append(out, slotBytes[:]...)
	return out
}

func (l *ListStorageLocation) String() string {
	return hexutil.Encode(l.Bytes())
}
