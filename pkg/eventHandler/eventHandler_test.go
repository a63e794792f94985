package eventHandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_EventHandler(t *testing.T) {
	t.Run("ListenToChannel", func(t *testing.T) {
		h := NewEventHandler(zap.NewNop())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var mu sync.Mutex
		var received []uint64
		done := make(chan struct{})
		go func() {
			h.ListenToChannel(ctx, func(e *types.DecodedEvent) {
				mu.Lock()
				defer mu.Unlock()
				received = append(received, e.BlockNumber)
				if len(received) == 3 {
					close(done)
				}
			})
		}()

		for _, block := range []uint64{1, 5, 9} {
			require.NoError(t, h.HandleEvent(ctx, &types.DecodedEvent{Contract: "EFPListRecords", BlockNumber: block}))
		}

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatal("timed out waiting for events")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []uint64{1, 5, 9}, received)
	})

	t.Run("DropsWhenFull", func(t *testing.T) {
		h := NewEventHandler(zap.NewNop())
		ctx := context.Background()

		for i := 0; i < cap(h.EventChannel)+10; i++ {
			require.NoError(t, h.HandleEvent(ctx, &types.DecodedEvent{BlockNumber: uint64(i)}))
		}
		assert.Len(t, h.EventChannel, cap(h.EventChannel))
	})

	t.Run("StopsOnContextDone", func(t *testing.T) {
		h := NewEventHandler(zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())

		exited := make(chan struct{})
		go func() {
			h.ListenToChannel(ctx, func(*types.DecodedEvent) {})
			close(exited)
		}()
		cancel()

		select {
		case <-exited:
		case <-time.After(2 * time.Second):
			t.Fatal("listener did not exit")
		}
	})
}
