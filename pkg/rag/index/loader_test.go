package index

import (
	"context"
	"testing"

	"eval-assistant-be/internal/pkg/logger"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func TestLoaderAppliesPatternAndLimits(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/repo/docs/a.md":          "alpha",
		"/repo/docs/guide/b.md":    "beta",
		"/repo/docs/guide/c.txt":   "gamma",
		"/repo/docs/image.png":     "binary",
		"/repo/docs/empty.md":      "   \n",
		"/repo/README.md":          "readme",
		"/repo/examples/notes.rst": "delta",
	})

	l := NewLoader(fsys, []Root{
		{Path: "/repo/docs", Limit: 2},
		{Path: "/repo/README.md", Limit: 1},
		{Path: "/repo/missing", Limit: 5},
		{Path: "/repo/examples", Limit: 0},
	}, "", logger.NewNopLogger())

	docs, err := l.Load(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	// blank files do not count against a root's limit
	assert.Equal(t, []string{
		"/repo/docs/a.md",
		"/repo/docs/guide/b.md",
		"/repo/README.md",
		"/repo/examples/notes.rst",
	}, ids)
	assert.Equal(t, "b.md", docs[1].Title)
	assert.Equal(t, "readme", docs[2].Content)
}

func TestLoaderStopsOnCancelledContext(t *testing.T) {
	fsys := memFS(t, map[string]string{"/docs/a.md": "alpha"})
	l := NewLoader(fsys, []Root{{Path: "/docs", Limit: 5}}, "", logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
