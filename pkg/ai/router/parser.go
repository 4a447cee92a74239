package router

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Action is the routing verb chosen by the model. Values outside the three
// constants are kept as-is so the caller can report them.
type Action string

const (
	ActionTool   Action = "tool"
	ActionRAG    Action = "rag"
	ActionDirect Action = "direct"
)

func (a Action) Known() bool {
	switch a {
	case ActionTool, ActionRAG, ActionDirect:
		return true
	}
	return false
}

// Decision is the validated shape of the router model's reply.
type Decision struct {
	Action    Action
	Tool      string
	Arguments map[string]interface{}
}

// Decided is false for the zero Decision, which stands for "no decision".
func (d Decision) Decided() bool {
	return d.Action != ""
}

// ParseDecision extracts {action, tool, arguments} from free-form model
// output. Models often wrap the object in prose or code fences, so the
// outermost {...} span is parsed. The second return is false when there is
// no usable object or the action is missing, not a string, or blank.
func ParseDecision(body string) (Decision, bool) {
	raw, ok := extractJSON(body)
	if !ok {
		return Decision{}, false
	}
	doc := gjson.Parse(raw)

	action := doc.Get("action")
	if action.Type != gjson.String {
		return Decision{}, false
	}
	verb := strings.ToLower(strings.TrimSpace(action.String()))
	if verb == "" {
		return Decision{}, false
	}

	decision := Decision{
		Action:    Action(verb),
		Arguments: map[string]interface{}{},
	}
	if tool := doc.Get("tool"); tool.Type == gjson.String {
		decision.Tool = strings.TrimSpace(tool.String())
	}
	if args := doc.Get("arguments"); args.IsObject() {
		if m, ok := args.Value().(map[string]interface{}); ok {
			decision.Arguments = m
		}
	}
	return decision, true
}

func extractJSON(body string) (string, bool) {
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start == -1 || end <= start {
		return "", false
	}
	raw := body[start : end+1]
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return "", false
	}
	return raw, true
}
