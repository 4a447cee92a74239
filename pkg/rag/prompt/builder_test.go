package prompt

import (
	"strings"
	"testing"

	"eval-assistant-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
)

func TestGroundedBuilderEmbedsPassagesInOrder(t *testing.T) {
	out := NewGroundedBuilder([]index.Passage{
		{Text: "first passage\n", Source: "docs/a.md"},
		{Text: "second passage", Source: "docs/b.md"},
	}).Build()

	assert.Contains(t, out, "[1] (docs/a.md)\nfirst passage\n")
	assert.Contains(t, out, "[2] (docs/b.md)\nsecond passage\n")
	assert.Less(t, strings.Index(out, "first passage"), strings.Index(out, "second passage"))
	assert.Contains(t, out, "Answer only from the reference material")
}
