package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletedEncodeDecode(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := NewChatCompleted(ChatCompleted{
		RequestID:     "req-1",
		Route:         "tool",
		Tool:          "list_runs",
		Terminal:      "final",
		Elapsed:       1500 * time.Millisecond,
		MessageLength: 50,
	}, at)

	data, err := Encode(ev)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeChatCompleted, back.EventType())
	assert.True(t, at.Equal(back.Timestamp()))
	assert.Equal(t, "list_runs", back.Payload()["tool"])
	assert.Equal(t, float64(1500), back.Payload()["elapsed_ms"])
}

func TestDecodeRejectsUntypedEvents(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
