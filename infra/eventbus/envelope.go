package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/atm/pkg/domain/events"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	data, err := json.Marshal(envelope{Type: event.Type(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope %s: %w", event.Type(), err)
	}
	return data, nil
}

func decodeEnvelope(raw []byte, factories map[string]func() events.Event) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	constructor, ok := factories[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}
