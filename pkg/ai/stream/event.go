package stream

import "encoding/json"

// EventType tags one line of the NDJSON wire format.
type EventType string

const (
	EventStatus EventType = "status"
	EventDelta  EventType = "delta"
	EventFinal  EventType = "final"
	EventError  EventType = "error"
)

// IsTerminal reports whether the event ends a stream.
func (t EventType) IsTerminal() bool {
	return t == EventFinal || t == EventError
}

// Event is one streamed unit. Status and error events carry Message, delta and
// final events carry Content.
type Event struct {
	Type    EventType
	Message string
	Content string
}

func Status(msg string) Event   { return Event{Type: EventStatus, Message: msg} }
func Delta(chunk string) Event  { return Event{Type: EventDelta, Content: chunk} }
func Final(answer string) Event { return Event{Type: EventFinal, Content: answer} }
func Error(msg string) Event    { return Event{Type: EventError, Message: msg} }

// Payload returns the message or content, whichever the type uses.
func (e Event) Payload() string {
	switch e.Type {
	case EventDelta, EventFinal:
		return e.Content
	default:
		return e.Message
	}
}

// MarshalJSON always writes the payload key, even when empty, so a final
// event with no answer still reads {"type":"final","content":""}.
func (e Event) MarshalJSON() ([]byte, error) {
	key := "message"
	if e.Type == EventDelta || e.Type == EventFinal {
		key = "content"
	}
	return json.Marshal(map[string]string{
		"type": string(e.Type),
		key:    e.Payload(),
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    EventType `json:"type"`
		Message string    `json:"message"`
		Content string    `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Event{Type: raw.Type, Message: raw.Message, Content: raw.Content}
	return nil
}
