package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const TypeChatCompleted = "CHAT_COMPLETED"

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ChatCompleted describes one finished chat request. It carries no message
// text, only its length.
type ChatCompleted struct {
	RequestID     string
	Route         string
	Tool          string
	Terminal      string
	Elapsed       time.Duration
	MessageLength int
	HistoryLength int
}

func NewChatCompleted(c ChatCompleted, at time.Time) BaseEvent {
	data := map[string]interface{}{
		"request_id":     c.RequestID,
		"route":          c.Route,
		"terminal":       c.Terminal,
		"elapsed_ms":     c.Elapsed.Milliseconds(),
		"message_length": c.MessageLength,
		"history_length": c.HistoryLength,
	}
	if c.Tool != "" {
		data["tool"] = c.Tool
	}
	return BaseEvent{Type: TypeChatCompleted, Data: data, OccurredAt: at.UTC()}
}

// Encode serializes any Event into the BaseEvent wire shape.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

func Decode(data []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
