package router

import (
	"context"
	"errors"
	"testing"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply    string
	err      error
	calls    int
	messages []llm.Message
	options  *llm.Options
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	f.messages = history
	f.options = llm.Apply(opts...)
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   Decision
		wantOK bool
	}{
		{
			name:   "tool with arguments",
			body:   `{"action":"tool","tool":"list_runs","arguments":{"limit":5}}`,
			want:   Decision{Action: ActionTool, Tool: "list_runs", Arguments: map[string]interface{}{"limit": float64(5)}},
			wantOK: true,
		},
		{
			name:   "action is lowercased",
			body:   `{"action":"RAG"}`,
			want:   Decision{Action: ActionRAG, Arguments: map[string]interface{}{}},
			wantOK: true,
		},
		{
			name:   "wrapped in a code fence",
			body:   "Sure:\n```json\n{\"action\":\"direct\"}\n```",
			want:   Decision{Action: ActionDirect, Arguments: map[string]interface{}{}},
			wantOK: true,
		},
		{
			name:   "unknown action is kept",
			body:   `{"action":"delete_everything"}`,
			want:   Decision{Action: "delete_everything", Arguments: map[string]interface{}{}},
			wantOK: true,
		},
		{
			name:   "tool without name",
			body:   `{"action":"tool","arguments":{"limit":5}}`,
			want:   Decision{Action: ActionTool, Arguments: map[string]interface{}{"limit": float64(5)}},
			wantOK: true,
		},
		{
			name:   "non string tool is ignored",
			body:   `{"action":"tool","tool":7}`,
			want:   Decision{Action: ActionTool, Arguments: map[string]interface{}{}},
			wantOK: true,
		},
		{name: "plain text", body: "I think you want the docs."},
		{name: "truncated json", body: `{"action":"tool","tool":"list_`},
		{name: "missing action", body: `{"tool":"list_runs"}`},
		{name: "non string action", body: `{"action":3}`},
		{name: "blank action", body: `{"action":"  "}`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDecision(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, got.Decided())
		})
	}
}

func TestRouteMakesOneCallWithSystemAndUser(t *testing.T) {
	provider := &fakeProvider{reply: `{"action":"rag"}`}
	r := NewRouter(provider, "router-model", logger.NewNopLogger())

	decision, err := r.Route(context.Background(), "what does faithfulness measure?")

	require.NoError(t, err)
	assert.Equal(t, ActionRAG, decision.Action)
	assert.Equal(t, 1, provider.calls)
	require.Len(t, provider.messages, 2)
	assert.Equal(t, llm.RoleSystem, provider.messages[0].Role)
	assert.Contains(t, provider.messages[0].Content, "list_runs")
	assert.Contains(t, provider.messages[0].Content, "run_id")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "what does faithfulness measure?"}, provider.messages[1])
	assert.Equal(t, "router-model", provider.options.Model)
	require.NotNil(t, provider.options.Temperature)
	assert.Zero(t, *provider.options.Temperature)
}

func TestRouteNonJSONIsNoDecision(t *testing.T) {
	provider := &fakeProvider{reply: "Let me look at the docs for you."}
	r := NewRouter(provider, "", logger.NewNopLogger())

	decision, err := r.Route(context.Background(), "how are runs scored?")

	require.NoError(t, err)
	assert.False(t, decision.Decided())
	assert.Equal(t, 1, provider.calls)
}

func TestRouteReturnsProviderError(t *testing.T) {
	boom := errors.New("connection refused")
	provider := &fakeProvider{err: boom}
	r := NewRouter(provider, "", logger.NewNopLogger())

	_, err := r.Route(context.Background(), "list my runs please")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, provider.calls)
}

func TestBuildInstructionListsEveryAction(t *testing.T) {
	instruction := BuildInstruction(nil)
	for _, action := range []Action{ActionTool, ActionRAG, ActionDirect} {
		assert.Contains(t, instruction, "- "+string(action)+":")
	}
}

func TestActionKnown(t *testing.T) {
	for _, a := range []Action{ActionTool, ActionRAG, ActionDirect} {
		assert.True(t, a.Known(), a)
	}
	assert.False(t, Action("launch").Known())
	assert.False(t, Action("").Known())
}
