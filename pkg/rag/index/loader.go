package index

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/store"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

const DefaultPattern = "**/*.{md,txt,rst}"

// Root is a document source: a directory searched with the loader's glob
// pattern, or a single file. At most Limit documents are taken from it.
type Root struct {
	Path  string
	Limit int
}

type Loader struct {
	fs      afero.Fs
	roots   []Root
	pattern string
	logger  logger.ILogger
}

func NewLoader(fsys afero.Fs, roots []Root, pattern string, log logger.ILogger) *Loader {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Loader{fs: fsys, roots: roots, pattern: pattern, logger: log}
}

// Load reads every root in order. Missing or unreadable roots are logged and
// skipped; only context cancellation aborts the load.
func (l *Loader) Load(ctx context.Context) ([]store.Document, error) {
	var docs []store.Document

	for _, root := range l.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		limit := root.Limit
		if limit < 1 {
			limit = 1
		}

		info, err := l.fs.Stat(root.Path)
		if err != nil {
			l.logger.Warn("IndexLoader", "document root unavailable", map[string]interface{}{
				"root":  root.Path,
				"error": err.Error(),
			})
			continue
		}

		var loaded []store.Document
		if info.IsDir() {
			loaded, err = l.loadDir(ctx, root.Path, limit)
		} else {
			loaded, err = l.loadFile(l.fs, root.Path, root.Path)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("IndexLoader", "failed to load document root", map[string]interface{}{
				"root":  root.Path,
				"error": err.Error(),
			})
			continue
		}

		l.logger.Info("IndexLoader", "document root loaded", map[string]interface{}{
			"root":      root.Path,
			"documents": len(loaded),
			"limit":     limit,
		})
		docs = append(docs, loaded...)
	}

	return docs, nil
}

func (l *Loader) loadDir(ctx context.Context, dir string, limit int) ([]store.Document, error) {
	base := afero.NewBasePathFs(l.fs, dir)
	matches, err := doublestar.Glob(afero.NewIOFS(base), l.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var docs []store.Document
	for _, match := range matches {
		if len(docs) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loaded, err := l.loadFile(base, match, path.Join(filepath.ToSlash(dir), match))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

// loadFile returns zero or one document; blank files are dropped.
func (l *Loader) loadFile(fsys afero.Fs, name, id string) ([]store.Document, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return []store.Document{{
		ID:       filepath.ToSlash(id),
		Title:    path.Base(filepath.ToSlash(id)),
		Content:  content,
		Metadata: map[string]interface{}{"bytes": len(data)},
	}}, nil
}
