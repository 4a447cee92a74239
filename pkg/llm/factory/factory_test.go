package factory

import (
	"testing"

	"eval-assistant-be/pkg/llm/ollama"
	"eval-assistant-be/pkg/llm/openailm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider("huggingface", "meta-llama/Llama-3.1-8B-Instruct", "https://router.huggingface.co/v1", "hf_x")
	require.NoError(t, err)
	assert.IsType(t, &openailm.Provider{}, p)

	_, err = NewLLMProvider("gemini", "x", "", "")
	assert.EqualError(t, err, "unsupported LLM provider: gemini")
}
