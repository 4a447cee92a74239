package router

import (
	"context"
	"fmt"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/ai/tool"
	"eval-assistant-be/pkg/llm"
)

// Router asks the routing model to classify one message. It makes exactly
// one model call per Route and has no timing logic of its own.
type Router struct {
	provider    llm.LLMProvider
	model       string
	instruction string
	trace       logger.ILogger
}

func NewRouter(provider llm.LLMProvider, model string, trace logger.ILogger) *Router {
	return &Router{
		provider:    provider,
		model:       model,
		instruction: BuildInstruction(tool.Catalog),
		trace:       trace,
	}
}

// Route returns the parsed decision. Unparseable output yields the zero
// Decision and a nil error; only the model call itself can fail.
func (r *Router) Route(ctx context.Context, text string) (Decision, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: r.instruction},
		{Role: llm.RoleUser, Content: text},
	}

	opts := []llm.Option{llm.WithTemperature(0)}
	if r.model != "" {
		opts = append(opts, llm.WithModel(r.model))
	}

	reply, err := r.provider.Chat(ctx, messages, opts...)
	if err != nil {
		return Decision{}, fmt.Errorf("router completion: %w", err)
	}

	decision, ok := ParseDecision(reply)
	r.trace.Info("Router", "router reply", map[string]interface{}{
		"model":   r.model,
		"query":   truncateLog(text, 200),
		"reply":   truncateLog(reply, 500),
		"decided": ok,
		"action":  string(decision.Action),
		"tool":    decision.Tool,
	})
	return decision, nil
}

func truncateLog(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
