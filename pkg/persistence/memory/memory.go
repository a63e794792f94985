package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
)

// MemoryPersistence is an in-memory implementation of IWatcherPersistence.
//
// All data is lost when the process exits, so a watcher using it re-scans from its
// configured start block on every run. Deep copies data to prevent external mutation.
type MemoryPersistence struct {
	mu sync.RWMutex

	// contract -> checkpoint
	checkpoints map[string]*persistence.Checkpoint

	// contract -> event key -> event
	events map[string]map[string]*types.DecodedEvent

	closed bool
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		checkpoints: make(map[string]*persistence.Checkpoint),
		events:      make(map[string]map[string]*types.DecodedEvent),
	}
}

func (m *MemoryPersistence) SaveCheckpoint(checkpoint *persistence.Checkpoint) error {
	if checkpoint == nil {
		return fmt.Errorf("cannot save nil Checkpoint")
	}
	if checkpoint.Contract == "" {
		return fmt.Errorf("checkpoint contract cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	cp := *checkpoint
	m.checkpoints[checkpoint.Contract] = &cp
	return nil
}

func (m *MemoryPersistence) LoadCheckpoint(contract string) (*persistence.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	cp, ok := m.checkpoints[contract]
	if !ok {
		return nil, nil
	}
	out := *cp
	return &out, nil
}

func (m *MemoryPersistence) SaveEvent(event *types.DecodedEvent) error {
	if event == nil {
		return fmt.Errorf("cannot save nil DecodedEvent")
	}
	if event.Contract == "" {
		return fmt.Errorf("event contract cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	byKey, ok := m.events[event.Contract]
	if !ok {
		byKey = make(map[string]*types.DecodedEvent)
		m.events[event.Contract] = byKey
	}
	byKey[event.Key()] = deepCopyEvent(event)
	return nil
}

func (m *MemoryPersistence) DeleteEvent(contract string, blockNumber uint64, logIndex uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	if byKey, ok := m.events[contract]; ok {
		delete(byKey, (&types.DecodedEvent{BlockNumber: blockNumber, LogIndex: logIndex}).Key())
	}
	return nil
}

func (m *MemoryPersistence) ListEvents(contract string) ([]*types.DecodedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	byKey := m.events[contract]
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	events := make([]*types.DecodedEvent, 0, len(keys))
	for _, k := range keys {
		events = append(events, deepCopyEvent(byKey[k]))
	}
	return events, nil
}

// Close is idempotent.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}
	return nil
}

func deepCopyEvent(event *types.DecodedEvent) *types.DecodedEvent {
	out := *event
	if event.Args != nil {
		out.Args = make(map[string]string, len(event.Args))
		for k, v := range event.Args {
			out.Args[k] = v
		}
	}
	return &out
}
