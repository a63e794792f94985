package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
)

func MarshalCheckpoint(cp *Checkpoint) ([]byte, error) {
	if cp == nil {
		return nil, fmt.Errorf("cannot marshal nil Checkpoint")
	}
	if cp.Contract == "" {
		return nil, fmt.Errorf("checkpoint contract cannot be empty")
	}
	return json.Marshal(cp)
}

func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Checkpoint: %w", err)
	}
	return &cp, nil
}

func MarshalDecodedEvent(event *types.DecodedEvent) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("cannot marshal nil DecodedEvent")
	}
	if event.Contract == "" {
		return nil, fmt.Errorf("event contract cannot be empty")
	}
	return json.Marshal(event)
}

func UnmarshalDecodedEvent(data []byte) (*types.DecodedEvent, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var event types.DecodedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to DecodedEvent: %w", err)
	}
	return &event, nil
}
