package persistence

import (
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CheckpointSerialization(t *testing.T) {
	cp := NewCheckpoint("EFPListRecords", common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"), 1234, "session")

	data, err := MarshalCheckpoint(cp)
	require.NoError(t, err)
	loaded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, cp, loaded)

	_, err = MarshalCheckpoint(nil)
	require.Error(t, err)
	_, err = MarshalCheckpoint(&Checkpoint{})
	require.Error(t, err)
	_, err = UnmarshalCheckpoint(nil)
	require.Error(t, err)
	_, err = UnmarshalCheckpoint([]byte("{"))
	require.Error(t, err)
}

func Test_DecodedEventSerialization(t *testing.T) {
	event := &types.DecodedEvent{
		Contract:    "EFPListRecords",
		Event:       "ListManagerChange",
		BlockNumber: 10,
		LogIndex:    2,
		Args:        map[string]string{"nonce": "1", "manager": "0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496"},
	}

	data, err := MarshalDecodedEvent(event)
	require.NoError(t, err)
	loaded, err := UnmarshalDecodedEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event, loaded)

	_, err = MarshalDecodedEvent(nil)
	require.Error(t, err)
	_, err = UnmarshalDecodedEvent([]byte{})
	require.Error(t, err)
}

func Test_EventKeyOrdering(t *testing.T) {
	keys := []string{
		EventKey("EFPListRecords", 100, 1),
		EventKey("EFPListRecords", 9, 30),
		EventKey("EFPListRecords", 100, 0),
		EventKey("EFPListRecords", 10, 0),
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		EventKey("EFPListRecords", 9, 30),
		EventKey("EFPListRecords", 10, 0),
		EventKey("EFPListRecords", 100, 0),
		EventKey("EFPListRecords", 100, 1),
	}, keys)
}
