package index

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellBuildsOnceUnderConcurrency(t *testing.T) {
	release := make(chan struct{})
	built := &Index{passages: []Passage{{Text: "x"}}, tokens: []map[string]struct{}{{"x": {}}}}
	cell := NewCell(func(ctx context.Context) (*Index, error) {
		<-release
		return built, nil
	}, time.Second)

	var wg sync.WaitGroup
	results := make([]*Index, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := cell.Get(context.Background())
			assert.NoError(t, err)
			results[i] = idx
		}(i)
	}

	assert.False(t, cell.Built())
	close(release)
	wg.Wait()

	assert.True(t, cell.Built())
	assert.Equal(t, 1, cell.Builds())
	for _, idx := range results {
		assert.Same(t, built, idx)
	}
}

func TestCellBuildIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cell := NewCell(func(ctx context.Context) (*Index, error) {
		return &Index{}, ctx.Err()
	}, time.Second)

	idx, err := cell.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, idx)
}

func TestCellBuildIsBoundedAndNotRetried(t *testing.T) {
	cell := NewCell(func(ctx context.Context) (*Index, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, 20*time.Millisecond)

	_, err := cell.Get(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = cell.Get(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, cell.Builds())
}

func TestCellNilIndexBecomesEmpty(t *testing.T) {
	cell := NewCell(func(ctx context.Context) (*Index, error) {
		return nil, nil
	}, 0)

	idx, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestCellTimeoutDuringEmbeddingKeepsKeywordIndex(t *testing.T) {
	var docs []store.Document
	for i := 0; i < 10; i++ {
		docs = append(docs, store.Document{ID: fmt.Sprintf("doc-%d.md", i), Content: fmt.Sprintf("run %d latency report", i)})
	}
	embedder := &slowEmbedder{delay: 50 * time.Millisecond}
	cell := NewCell(func(ctx context.Context) (*Index, error) {
		return Build(ctx, docs, BuildOptions{ChunkSize: 1000, Hybrid: true}, embedder, logger.NewNopLogger())
	}, 100*time.Millisecond)

	idx, err := cell.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.False(t, idx.Hybrid())
	assert.Equal(t, 10, idx.Len())

	again, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, idx, again)
	assert.Equal(t, 1, cell.Builds())

	hits, err := again.Search(context.Background(), "latency", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
	assert.Equal(t, "doc-0.md", hits[0].Source)
}
