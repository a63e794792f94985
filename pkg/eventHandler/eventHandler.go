package eventHandler

import (
	"context"

	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"go.uber.org/zap"
)

// IEventHandler receives every event the watcher persists, in (block, log index) order
// per contract.
type IEventHandler interface {
	HandleEvent(ctx context.Context, event *types.DecodedEvent) error
}

type EventHandler struct {
	EventChannel chan *types.DecodedEvent
	logger       *zap.Logger
}

func NewEventHandler(
	logger *zap.Logger,
) *EventHandler {
	return &EventHandler{
		EventChannel: make(chan *types.DecodedEvent, 100),
		logger:       logger,
	}
}

func (h *EventHandler) ListenToChannel(ctx context.Context, handleFunc func(*types.DecodedEvent)) {
	for {
		select {
		case event := <-h.EventChannel:
			h.logger.Sugar().Debugw("EventHandler received event",
				"contract", event.Contract,
				"event", event.Event,
				"block", event.BlockNumber,
			)
			handleFunc(event)
		case <-ctx.Done():
			h.logger.Sugar().Info("EventHandler channel listener exiting due to context done")
			return
		}
	}
}

// HandleEvent never blocks. Events are dropped with a warning when the channel is full;
// they remain in persistence and can be re-read with ListEvents.
func (h *EventHandler) HandleEvent(ctx context.Context, event *types.DecodedEvent) error {
	select {
	case h.EventChannel <- event:
	case <-ctx.Done():
		h.logger.Sugar().Warnw("Context done before sending event to channel",
			"contract", event.Contract,
			"block", event.BlockNumber,
			"logIndex", event.LogIndex,
		)
	default:
		h.logger.Sugar().Warnw("Event channel is full, dropping event",
			"contract", event.Contract,
			"event", event.Event,
			"block", event.BlockNumber,
			"logIndex", event.LogIndex,
		)
	}
	return nil
}
