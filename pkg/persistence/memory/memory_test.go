package memory

import (
	"testing"

	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/persistenceTest"
)

var _ persistence.IWatcherPersistence = (*MemoryPersistence)(nil)

func TestMemoryPersistence(t *testing.T) {
	persistenceTest.RunSuite(t, func(t *testing.T) persistence.IWatcherPersistence {
		return NewMemoryPersistence()
	})
}
