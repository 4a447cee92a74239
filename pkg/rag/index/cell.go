package index

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// BuildFunc produces the index. It runs at most once per Cell.
type BuildFunc func(ctx context.Context) (*Index, error)

// Cell holds the process-wide index. The first Get builds it; concurrent
// callers wait for that build and every later call returns the same result.
// A failed build is not retried.
type Cell struct {
	once    sync.Once
	build   BuildFunc
	timeout time.Duration

	idx    *Index
	err    error
	builds atomic.Int32
	ready  atomic.Bool
}

func NewCell(build BuildFunc, timeout time.Duration) *Cell {
	return &Cell{build: build, timeout: timeout}
}

// Get returns the built index. The build ignores the caller's cancellation
// and is bounded by the cell's own timeout.
func (c *Cell) Get(ctx context.Context) (*Index, error) {
	c.once.Do(func() {
		buildCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			buildCtx, cancel = context.WithTimeout(buildCtx, c.timeout)
			defer cancel()
		}
		c.builds.Add(1)
		c.idx, c.err = c.build(buildCtx)
		if c.idx == nil && c.err == nil {
			c.idx = &Index{}
		}
		c.ready.Store(true)
	})
	return c.idx, c.err
}

// Built reports whether the build has finished, successfully or not.
func (c *Cell) Built() bool {
	return c.ready.Load()
}

func (c *Cell) Builds() int {
	return int(c.builds.Load())
}
