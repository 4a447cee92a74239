package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("chat.orchestrator")

type stageKind int

const (
	stageOK stageKind = iota
	stageTimeout
	stageFailed
)

func (k stageKind) String() string {
	switch k {
	case stageOK:
		return "ok"
	case stageTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

type stageResult[T any] struct {
	kind  stageKind
	value T
	err   error
}

// runStage races fn against its own deadline. On expiry the stage context is
// cancelled and the result is reported as a timeout even if fn is still
// running; fn's goroutine exits on its own once it observes the cancellation.
func runStage[T any](ctx context.Context, name string, timeout time.Duration, fn func(context.Context) (T, error)) stageResult[T] {
	var (
		stageCtx context.Context
		cancel   context.CancelFunc
	)
	if timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		stageCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	stageCtx, span := tracer.Start(stageCtx, name)
	defer span.End()

	done := make(chan stageResult[T], 1)
	go func() {
		v, err := fn(stageCtx)
		if err != nil {
			done <- stageResult[T]{kind: stageFailed, err: err}
			return
		}
		done <- stageResult[T]{kind: stageOK, value: v}
	}()

	var res stageResult[T]
	select {
	case res = <-done:
		if res.kind == stageFailed && deadlineHit(ctx, stageCtx) {
			res.kind = stageTimeout
		}
	case <-stageCtx.Done():
		res = stageResult[T]{kind: stageFailed, err: stageCtx.Err()}
		if deadlineHit(ctx, stageCtx) {
			res.kind = stageTimeout
		}
	}

	span.SetAttributes(
		attribute.String("stage.outcome", res.kind.String()),
		attribute.Int64("stage.timeout_ms", timeout.Milliseconds()),
	)
	if res.err != nil {
		span.SetStatus(codes.Error, res.err.Error())
	}
	return res
}

// deadlineHit is true when the stage's own deadline expired while the
// request context is still live.
func deadlineHit(parent, stage context.Context) bool {
	return parent.Err() == nil && errors.Is(stage.Err(), context.DeadlineExceeded)
}
