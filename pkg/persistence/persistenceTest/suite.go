// Package persistenceTest holds the behaviour every IWatcherPersistence backend must share.
package persistenceTest

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend.
type Factory func(t *testing.T) persistence.IWatcherPersistence

func NewEvent(contract string, block uint64, logIndex uint) *types.DecodedEvent {
	return &types.DecodedEvent{
		Contract:        contract,
		Address:         common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"),
		Event:           "ListManagerChange",
		BlockNumber:     block,
		BlockHash:       common.BigToHash(common.Big1),
		TransactionHash: common.BigToHash(common.Big2),
		LogIndex:        logIndex,
		Args: map[string]string{
			"nonce":   "1",
			"manager": "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496",
		},
	}
}

func RunSuite(t *testing.T, newBackend Factory) {
	t.Run("Checkpoints", func(t *testing.T) {
		p := newBackend(t)
		defer func() { _ = p.Close() }()

		cp, err := p.LoadCheckpoint("EFPListRecords")
		require.NoError(t, err)
		assert.Nil(t, cp, "missing checkpoint should be nil")

		first := persistence.NewCheckpoint("EFPListRecords", common.HexToAddress("0x01"), 100, "session-a")
		require.NoError(t, p.SaveCheckpoint(first))
		second := persistence.NewCheckpoint("EFPListRecords", common.HexToAddress("0x01"), 250, "session-b")
		require.NoError(t, p.SaveCheckpoint(second))

		cp, err = p.LoadCheckpoint("EFPListRecords")
		require.NoError(t, err)
		require.NotNil(t, cp)
		assert.Equal(t, uint64(250), cp.LastProcessedBlock)
		assert.Equal(t, "session-b", cp.SessionID)

		other, err := p.LoadCheckpoint("EFPListRegistry")
		require.NoError(t, err)
		assert.Nil(t, other)

		require.Error(t, p.SaveCheckpoint(nil))
	})

	t.Run("EventsOrderedAndIdempotent", func(t *testing.T) {
		p := newBackend(t)
		defer func() { _ = p.Close() }()

		for _, e := range []*types.DecodedEvent{
			NewEvent("EFPListRecords", 100, 1),
			NewEvent("EFPListRecords", 9, 4),
			NewEvent("EFPListRecords", 100, 0),
			NewEvent("EFPListRecords", 100, 0),
			NewEvent("EFPListRegistry", 50, 0),
		} {
			require.NoError(t, p.SaveEvent(e))
		}

		events, err := p.ListEvents("EFPListRecords")
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, uint64(9), events[0].BlockNumber)
		assert.Equal(t, uint(0), events[1].LogIndex)
		assert.Equal(t, uint(1), events[2].LogIndex)
		assert.Equal(t, "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496", events[0].Args["manager"])

		empty, err := p.ListEvents("EFPAccountMetadata")
		require.NoError(t, err)
		assert.Empty(t, empty)

		require.Error(t, p.SaveEvent(nil))
	})

	t.Run("DeleteEvent", func(t *testing.T) {
		p := newBackend(t)
		defer func() { _ = p.Close() }()

		require.NoError(t, p.SaveEvent(NewEvent("EFPListRecords", 10, 0)))
		require.NoError(t, p.SaveEvent(NewEvent("EFPListRecords", 11, 0)))

		require.NoError(t, p.DeleteEvent("EFPListRecords", 10, 0))
		require.NoError(t, p.DeleteEvent("EFPListRecords", 10, 0), "delete should be idempotent")

		events, err := p.ListEvents("EFPListRecords")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, uint64(11), events[0].BlockNumber)
	})

	t.Run("ReturnedEventsAreCopies", func(t *testing.T) {
		p := newBackend(t)
		defer func() { _ = p.Close() }()

		e := NewEvent("EFPListRecords", 1, 0)
		require.NoError(t, p.SaveEvent(e))
		e.Args["manager"] = "mutated"

		events, err := p.ListEvents("EFPListRecords")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496", events[0].Args["manager"])
	})

	t.Run("ConcurrentWrites", func(t *testing.T) {
		p := newBackend(t)
		defer func() { _ = p.Close() }()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, p.SaveEvent(NewEvent("EFPListRecords", uint64(i), 0)))
			}(i)
		}
		wg.Wait()

		events, err := p.ListEvents("EFPListRecords")
		require.NoError(t, err)
		assert.Len(t, events, 20)
	})

	t.Run("Close", func(t *testing.T) {
		p := newBackend(t)

		require.NoError(t, p.HealthCheck())
		require.NoError(t, p.Close())
		require.NoError(t, p.Close(), "close should be idempotent")

		assert.Error(t, p.HealthCheck())
		assert.Error(t, p.SaveEvent(NewEvent("EFPListRecords", 1, 0)))
		_, err := p.ListEvents("EFPListRecords")
		assert.Error(t, err)
		_, err = p.LoadCheckpoint("EFPListRecords")
		assert.Error(t, err)
	})
}
