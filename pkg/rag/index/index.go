package index

import (
	"context"
	"sort"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/embedding"
	"eval-assistant-be/pkg/store"
	"eval-assistant-be/pkg/utils"
)

const (
	DefaultTopK     = 5
	DefaultMinScore = 0.35

	semanticWeight = 0.7
	keywordWeight  = 0.3
)

// Passage is one search hit. Score is the blended similarity in hybrid mode
// and the token overlap count in keyword mode.
type Passage struct {
	Text   string
	Source string
	Score  float64
}

type BuildOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Hybrid       bool
	MinScore     float64
}

// Index is immutable once built and safe for concurrent Search calls.
type Index struct {
	passages []Passage
	tokens   []map[string]struct{}
	vectors  [][]float32
	embedder embedding.EmbeddingProvider
	minScore float64
	logger   logger.ILogger
}

// Build splits docs into passages and, in hybrid mode, embeds each one. Any
// embedding failure, including the build deadline expiring mid-way, leaves an
// index without vectors that answers with keyword scoring.
func Build(ctx context.Context, docs []store.Document, opts BuildOptions, embedder embedding.EmbeddingProvider, log logger.ILogger) (*Index, error) {
	idx := &Index{embedder: embedder, minScore: opts.MinScore, logger: log}

	for _, doc := range docs {
		for _, chunk := range utils.SplitText(doc.Content, opts.ChunkSize, opts.ChunkOverlap) {
			idx.passages = append(idx.passages, Passage{Text: chunk, Source: doc.ID})
			idx.tokens = append(idx.tokens, Tokenize(chunk))
		}
	}

	if !opts.Hybrid || embedder == nil || len(idx.passages) == 0 {
		return idx, nil
	}

	vectors := make([][]float32, 0, len(idx.passages))
	for _, p := range idx.passages {
		vec, err := embedder.Embed(ctx, p.Text)
		if err != nil {
			log.Warn("Index", "embedding unavailable, using keyword retrieval", map[string]interface{}{
				"source":   p.Source,
				"embedded": len(vectors),
				"passages": len(idx.passages),
				"error":    err.Error(),
			})
			return idx, nil
		}
		vectors = append(vectors, vec)
	}
	idx.vectors = vectors
	return idx, nil
}

func (i *Index) Len() int {
	return len(i.passages)
}

// Hybrid reports whether semantic vectors are available.
func (i *Index) Hybrid() bool {
	return i.vectors != nil
}

// Search returns up to k passages, best first. A failed query embedding
// falls back to keyword scoring; context errors are returned as is.
func (i *Index) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	passages, _, err := i.SearchDegraded(ctx, query, k)
	return passages, err
}

// SearchDegraded is Search that also reports whether a hybrid index had to
// answer with keyword scoring because the query embedding failed.
func (i *Index) SearchDegraded(ctx context.Context, query string, k int) ([]Passage, bool, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(i.passages) == 0 {
		return nil, false, nil
	}
	if !i.Hybrid() {
		return rankByKeyword(i.passages, i.tokens, query, k), false, nil
	}

	qv, err := i.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		i.logger.Warn("Index", "query embedding failed, using keyword retrieval", map[string]interface{}{
			"error": err.Error(),
		})
		return rankByKeyword(i.passages, i.tokens, query, k), true, nil
	}

	return i.rankHybrid(qv, query, k), false, nil
}

func (i *Index) rankHybrid(qv []float32, query string, k int) []Passage {
	q := Tokenize(query)

	var hits []Passage
	for n, p := range i.passages {
		score := semanticWeight * embedding.Cosine(qv, i.vectors[n])
		if len(q) > 0 {
			score += keywordWeight * float64(overlap(q, i.tokens[n])) / float64(len(q))
		}
		if score < i.minScore {
			continue
		}
		p.Score = score
		hits = append(hits, p)
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
