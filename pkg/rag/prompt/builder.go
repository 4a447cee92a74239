package prompt

import (
	"fmt"
	"strings"

	"eval-assistant-be/pkg/rag/index"
)

// GroundedBuilder builds the system instruction for answers that must come
// only from retrieved passages.
type GroundedBuilder struct {
	passages []index.Passage
}

func NewGroundedBuilder(passages []index.Passage) *GroundedBuilder {
	return &GroundedBuilder{passages: passages}
}

func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeTask(&prompt)
	b.writeReferenceMaterial(&prompt)
	b.writeGuidelines(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You answer questions about an LLM evaluation toolkit using its documentation.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *GroundedBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	prompt.WriteString("<reference_material>\n")
	for i, p := range b.passages {
		fmt.Fprintf(prompt, "[%d] (%s)\n%s\n\n", i+1, p.Source, strings.TrimSpace(p.Text))
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *GroundedBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Answer only from the reference material above\n")
	prompt.WriteString("2. If the material does not contain the answer, reply with an empty message\n")
	prompt.WriteString("3. Be concise and cite passage numbers like [1] when useful\n")
	prompt.WriteString("</guidelines>")
}
