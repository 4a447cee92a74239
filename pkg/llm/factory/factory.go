package factory

import (
	"fmt"

	"eval-assistant-be/pkg/llm"
	"eval-assistant-be/pkg/llm/ollama"
	"eval-assistant-be/pkg/llm/openailm"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "huggingface":
		return openailm.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
