package persistence

import "github.com/ethereumfollowprotocol/efp-go/pkg/types"

// IWatcherPersistence stores the event watcher's progress and the events it has decoded.
// All implementations must be thread-safe.
type IWatcherPersistence interface {
	// SaveCheckpoint records the last fully processed block for a contract.
	// Overwrites any existing checkpoint for the same contract.
	SaveCheckpoint(checkpoint *Checkpoint) error

	// LoadCheckpoint returns the checkpoint for contract.
	// Returns nil if none exists (first run), error only on storage failure.
	LoadCheckpoint(contract string) (*Checkpoint, error)

	// SaveEvent persists a decoded event keyed by (contract, block, log index).
	// Idempotent: saving the same event twice stores it once.
	SaveEvent(event *types.DecodedEvent) error

	// DeleteEvent removes an event, used when a reorg drops its log.
	// Idempotent - returns nil if the event doesn't exist.
	DeleteEvent(contract string, blockNumber uint64, logIndex uint) error

	// ListEvents returns all events of contract ordered by block number then log index.
	// Returns empty slice if there are none.
	ListEvents(contract string) ([]*types.DecodedEvent, error)

	// Close cleanly shuts down the persistence layer.
	// Idempotent. After Close(), all other operations return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
