package eventbus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/bytedance/sonic"
)

// envelope is the wire form shared by the Redis and Kafka transports.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(event eventbus.Event) ([]byte, error) {
	data, err := sonic.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.Type(), err)
	}
	out, err := sonic.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope %s: %w", event.Type(), err)
	}
	return out, nil
}

// decodeEnvelope returns the envelope type and, when a factory is known for
// it, the decoded event.
func decodeEnvelope(raw []byte, factories map[string]eventbus.Factory) (string, eventbus.Event, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("envelope without type")
	}
	constructor, ok := factories[env.Type]
	if !ok {
		return env.Type, nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := sonic.Unmarshal(env.Payload, evt); err != nil {
		return env.Type, nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return env.Type, evt, nil
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
