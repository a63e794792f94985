package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/persistenceTest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ persistence.IWatcherPersistence = (*BadgerPersistence)(nil)

func newTestBadger(t *testing.T, path string) *BadgerPersistence {
	t.Helper()
	p, err := NewBadgerPersistence(path, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestBadgerPersistence(t *testing.T) {
	persistenceTest.RunSuite(t, func(t *testing.T) persistence.IWatcherPersistence {
		return newTestBadger(t, t.TempDir())
	})
}

func TestBadgerPersistence_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	p := newTestBadger(t, dir)
	require.NoError(t, p.SaveCheckpoint(persistence.NewCheckpoint("EFPListRegistry", common.HexToAddress("0x02"), 77, "s1")))
	require.NoError(t, p.SaveEvent(persistenceTest.NewEvent("EFPListRegistry", 77, 3)))
	require.NoError(t, p.Close())

	reopened := newTestBadger(t, dir)
	defer func() { _ = reopened.Close() }()

	cp, err := reopened.LoadCheckpoint("EFPListRegistry")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, uint64(77), cp.LastProcessedBlock)

	events, err := reopened.ListEvents("EFPListRegistry")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint(3), events[0].LogIndex)
}

func TestBadgerPersistence_PrefixIsolation(t *testing.T) {
	p := newTestBadger(t, t.TempDir())
	defer func() { _ = p.Close() }()

	// "EFPListRecords" must not match the "EFPListRecordsV2" namespace
	require.NoError(t, p.SaveEvent(persistenceTest.NewEvent("EFPListRecords", 1, 0)))
	require.NoError(t, p.SaveEvent(persistenceTest.NewEvent("EFPListRecordsV2", 1, 0)))

	events, err := p.ListEvents("EFPListRecords")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestBadgerPersistence_RelativePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	p := newTestBadger(t, "watcher-data")
	require.NoError(t, p.Close())

	_, err = os.Stat(filepath.Join(dir, "watcher-data"))
	assert.NoError(t, err)
}
