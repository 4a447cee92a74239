package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/llm"
	"eval-assistant-be/pkg/rag/index"
	"eval-assistant-be/pkg/rag/prompt"

	"github.com/patrickmn/go-cache"
)

const (
	searchTopK  = 5
	contextTopK = 3
)

type Status int

const (
	StatusAnswered Status = iota
	StatusNoPassages
	StatusNoAnswer
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusNoPassages:
		return "no_passages"
	default:
		return "no_answer"
	}
}

type Result struct {
	Status   Status
	Text     string
	Passages []index.Passage
}

type AnswererConfig struct {
	Model    string
	Grounded bool
	CacheTTL time.Duration
}

// Answerer retrieves passages from the shared index and, when grounding is
// enabled, asks the chat model to answer from them.
type Answerer struct {
	cell     *index.Cell
	provider llm.LLMProvider
	model    string
	grounded bool
	cache    *cache.Cache
	logger   logger.ILogger
}

func NewAnswerer(cell *index.Cell, provider llm.LLMProvider, cfg AnswererConfig, log logger.ILogger) *Answerer {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Answerer{
		cell:     cell,
		provider: provider,
		model:    cfg.Model,
		grounded: cfg.Grounded,
		cache:    cache.New(ttl, 2*ttl),
		logger:   log,
	}
}

func (a *Answerer) Answer(ctx context.Context, query string) (Result, error) {
	idx, err := a.cell.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("retrieval index: %w", err)
	}
	if idx.Len() == 0 {
		return Result{Status: StatusNoPassages}, nil
	}

	passages, err := a.search(ctx, idx, query)
	if err != nil {
		return Result{}, err
	}
	if len(passages) == 0 {
		return Result{Status: StatusNoPassages}, nil
	}

	top := passages
	if len(top) > contextTopK {
		top = top[:contextTopK]
	}

	if !a.grounded {
		texts := make([]string, len(top))
		for i, p := range top {
			texts[i] = strings.TrimSpace(p.Text)
		}
		return Result{Status: StatusAnswered, Text: strings.Join(texts, "\n\n"), Passages: top}, nil
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.NewGroundedBuilder(top).Build()},
		{Role: llm.RoleUser, Content: query},
	}
	var opts []llm.Option
	if a.model != "" {
		opts = append(opts, llm.WithModel(a.model))
	}

	reply, err := a.provider.Chat(ctx, messages, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("grounded completion: %w", err)
	}
	answer := strings.TrimSpace(reply)
	if answer == "" {
		return Result{Status: StatusNoAnswer, Passages: top}, nil
	}
	return Result{Status: StatusAnswered, Text: answer, Passages: top}, nil
}

func (a *Answerer) search(ctx context.Context, idx *index.Index, query string) ([]index.Passage, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if cached, ok := a.cache.Get(key); ok {
		return cached.([]index.Passage), nil
	}

	passages, degraded, err := idx.SearchDegraded(ctx, query, searchTopK)
	if err != nil {
		return nil, fmt.Errorf("passage search: %w", err)
	}

	a.logger.Debug("RAGAnswerer", "passages retrieved", map[string]interface{}{
		"query":    query,
		"hits":     len(passages),
		"hybrid":   idx.Hybrid(),
		"degraded": degraded,
	})
	// Keyword fallbacks from a failed query embedding are not cached.
	if !degraded {
		a.cache.SetDefault(key, passages)
	}
	return passages, nil
}

// Built reports whether the shared index has been built.
func (a *Answerer) Built() bool {
	return a.cell.Built()
}
