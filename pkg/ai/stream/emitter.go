package stream

import (
	"context"
	"errors"

	"eval-assistant-be/pkg/utils"
)

const DefaultChunkSize = 42

// ErrTerminated is returned for any emission after the terminal event.
var ErrTerminated = errors.New("stream: terminal event already emitted")

// Emitter frames text into events and writes them to a bounded channel. The
// transport drains the channel, so a slow client slows the producer down.
//
// Exactly one terminal event (final or error) is ever written. An Emitter
// belongs to a single request and is not safe for concurrent use.
type Emitter struct {
	out       chan<- Event
	chunkSize int
	terminal  *Event
}

func NewEmitter(out chan<- Event, chunkSize int) *Emitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Emitter{out: out, chunkSize: chunkSize}
}

// Status emits a progress note.
func (e *Emitter) Status(ctx context.Context, msg string) error {
	return e.send(ctx, Status(msg))
}

// Stream emits the answer as deltas of at most chunkSize runes, then each
// trailer as a status event, then one final event holding the whole answer.
// An empty answer emits no deltas and an empty final.
func (e *Emitter) Stream(ctx context.Context, answer string, trailers ...string) error {
	if e.terminal != nil {
		return ErrTerminated
	}
	for _, chunk := range utils.ChunkRunes(answer, e.chunkSize) {
		if err := e.send(ctx, Delta(chunk)); err != nil {
			return err
		}
	}
	for _, trailer := range trailers {
		if err := e.send(ctx, Status(trailer)); err != nil {
			return err
		}
	}
	return e.send(ctx, Final(answer))
}

// Final emits a bare terminal answer without deltas.
func (e *Emitter) Final(ctx context.Context, answer string) error {
	return e.send(ctx, Final(answer))
}

// Error emits a terminal error.
func (e *Emitter) Error(ctx context.Context, msg string) error {
	return e.send(ctx, Error(msg))
}

// Terminal returns the terminal event, if one was emitted.
func (e *Emitter) Terminal() (Event, bool) {
	if e.terminal == nil {
		return Event{}, false
	}
	return *e.terminal, true
}

// EnsureTerminal closes the stream with msg as an error when nothing terminal
// was emitted yet.
func (e *Emitter) EnsureTerminal(ctx context.Context, msg string) {
	if e.terminal == nil {
		_ = e.Error(ctx, msg)
	}
}

func (e *Emitter) send(ctx context.Context, ev Event) error {
	if e.terminal != nil {
		return ErrTerminated
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case e.out <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}
	if ev.Type.IsTerminal() {
		e.terminal = &ev
	}
	return nil
}
