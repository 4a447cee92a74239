package stream

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, chunkSize int, run func(ctx context.Context, e *Emitter)) []Event {
	t.Helper()
	ch := make(chan Event, 1)
	e := NewEmitter(ch, chunkSize)

	go func() {
		defer close(ch)
		run(context.Background(), e)
	}()

	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func joinDeltas(events []Event) string {
	var sb strings.Builder
	for _, ev := range events {
		if ev.Type == EventDelta {
			sb.WriteString(ev.Content)
		}
	}
	return sb.String()
}

func TestStreamRoundTrip(t *testing.T) {
	answers := []string{
		"short",
		strings.Repeat("a", 42),
		strings.Repeat("b", 85),
		"Run 7 finished with accuracy 0.93; précision and rappel improved — ✓",
	}
	for _, answer := range answers {
		for _, k := range []int{1, 5, 42} {
			events := collect(t, k, func(ctx context.Context, e *Emitter) {
				assert.NoError(t, e.Stream(ctx, answer))
			})

			require.NotEmpty(t, events)
			last := events[len(events)-1]
			assert.Equal(t, EventFinal, last.Type)
			assert.Equal(t, answer, last.Content)
			assert.Equal(t, answer, joinDeltas(events))

			wantDeltas := (len([]rune(answer)) + k - 1) / k
			assert.Len(t, events, wantDeltas+1)
		}
	}
}

func TestStreamPreservesInvalidUTF8(t *testing.T) {
	answer := "run\xff7 \xc3done"
	events := collect(t, 3, func(ctx context.Context, e *Emitter) {
		assert.NoError(t, e.Stream(ctx, answer))
	})

	assert.Equal(t, answer, joinDeltas(events))
	assert.Equal(t, answer, events[len(events)-1].Content)
}

func TestStreamEmptyAnswer(t *testing.T) {
	events := collect(t, 42, func(ctx context.Context, e *Emitter) {
		assert.NoError(t, e.Stream(ctx, ""))
	})

	require.Len(t, events, 1)
	assert.Equal(t, Final(""), events[0])
}

func TestStreamTrailersPrecedeFinal(t *testing.T) {
	events := collect(t, 4, func(ctx context.Context, e *Emitter) {
		assert.NoError(t, e.Status(ctx, "running tool"))
		assert.NoError(t, e.Stream(ctx, "abcdef", "completed in 1.2s"))
	})

	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventStatus, EventDelta, EventDelta, EventStatus, EventFinal}, types)
	assert.Equal(t, "completed in 1.2s", events[3].Message)
}

func TestSingleTerminalEvent(t *testing.T) {
	events := collect(t, 42, func(ctx context.Context, e *Emitter) {
		assert.NoError(t, e.Error(ctx, "tool timed out after 12s"))
		assert.ErrorIs(t, e.Final(ctx, "late"), ErrTerminated)
		assert.ErrorIs(t, e.Stream(ctx, "later"), ErrTerminated)
		assert.ErrorIs(t, e.Status(ctx, "after"), ErrTerminated)
		e.EnsureTerminal(ctx, "internal error")

		term, ok := e.Terminal()
		assert.True(t, ok)
		assert.Equal(t, EventError, term.Type)
	})

	require.Len(t, events, 1)
	assert.Equal(t, Error("tool timed out after 12s"), events[0])
}

func TestEnsureTerminalAddsError(t *testing.T) {
	events := collect(t, 42, func(ctx context.Context, e *Emitter) {
		assert.NoError(t, e.Status(ctx, "classifying"))
		e.EnsureTerminal(ctx, "internal error")
	})

	require.Len(t, events, 2)
	assert.Equal(t, Error("internal error"), events[1])
}

func TestSendStopsOnCancelledContext(t *testing.T) {
	ch := make(chan Event) // unbuffered and never drained
	e := NewEmitter(ch, 42)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Stream(ctx, "nobody is listening")

	assert.ErrorIs(t, err, context.Canceled)
	_, ok := e.Terminal()
	assert.False(t, ok)
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Status("classifying"), `{"message":"classifying","type":"status"}`},
		{Delta("abc"), `{"content":"abc","type":"delta"}`},
		{Final(""), `{"content":"","type":"final"}`},
		{Error("boom"), `{"message":"boom","type":"error"}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type), func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Event
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.event, back)
		})
	}
}
