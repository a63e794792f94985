package persistence

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
)

// Checkpoint is the watcher's progress for one contract.
type Checkpoint struct {
	Contract string         `json:"contract"`
	Address  common.Address `json:"address"`

	// LastProcessedBlock is the highest block whose logs have all been persisted.
	LastProcessedBlock uint64 `json:"lastProcessedBlock"`

	// SessionID identifies the watcher run that wrote the checkpoint.
	SessionID string `json:"sessionId"`

	UpdatedAt int64 `json:"updatedAt"`
}

func NewCheckpoint(contract string, address common.Address, block uint64, sessionID string) *Checkpoint {
	return &Checkpoint{
		Contract:           contract,
		Address:            address,
		LastProcessedBlock: block,
		SessionID:          sessionID,
		UpdatedAt:          time.Now().Unix(),
	}
}

// EventKey is the storage key of an event within its contract's namespace. Keys sort
// lexically in (block, log index) order.
func EventKey(contract string, blockNumber uint64, logIndex uint) string {
	return fmt.Sprintf("%s:%020d:%010d", contract, blockNumber, logIndex)
}

func EventKeyOf(event *types.DecodedEvent) string {
	return EventKey(event.Contract, event.BlockNumber, event.LogIndex)
}
