package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/llm"
)

// ErrNoAnswer means the model replied with empty content.
var ErrNoAnswer = errors.New("model returned no answer")

const DefaultDirectInstruction = "You are a concise assistant for an LLM evaluation toolkit. " +
	"Answer the user's question directly and briefly. " +
	"If you do not know the answer, say so instead of guessing."

// DirectResponder sends the bare message to the chat model with a generic
// instruction. No history, retrieval or tools are involved.
type DirectResponder struct {
	llmProvider llm.LLMProvider
	model       string
	instruction string
	logger      logger.ILogger
}

func NewDirectResponder(llmProvider llm.LLMProvider, model string, log logger.ILogger) *DirectResponder {
	return &DirectResponder{
		llmProvider: llmProvider,
		model:       model,
		instruction: DefaultDirectInstruction,
		logger:      log,
	}
}

func (p *DirectResponder) Respond(ctx context.Context, message string) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: p.instruction},
		{Role: llm.RoleUser, Content: message},
	}

	var opts []llm.Option
	if p.model != "" {
		opts = append(opts, llm.WithModel(p.model))
	}

	response, err := p.llmProvider.Chat(ctx, messages, opts...)
	if err != nil {
		p.logger.Warn("DirectResponder", "completion failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", fmt.Errorf("direct completion: %w", err)
	}

	answer := strings.TrimSpace(response)
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}
