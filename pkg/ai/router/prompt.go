package router

import (
	"fmt"
	"strings"

	"eval-assistant-be/pkg/ai/tool"
)

// BuildInstruction renders the system instruction listing the action
// vocabulary and the tool catalog with its argument schemas.
func BuildInstruction(catalog []tool.Spec) string {
	var sb strings.Builder

	sb.WriteString("You route questions for an evaluation assistant. ")
	sb.WriteString("Reply with a single JSON object and nothing else:\n")
	sb.WriteString(`{"action": "tool" | "rag" | "direct", "tool": "<tool name>", "arguments": {...}}`)
	sb.WriteString("\n\nActions:\n")
	sb.WriteString("- tool: the user asks for live data about evaluation runs. Set \"tool\" and \"arguments\".\n")
	sb.WriteString("- rag: the user asks how the project works, its metrics, configuration or documentation.\n")
	sb.WriteString("- direct: general questions or conversation that need neither data nor documentation.\n")
	sb.WriteString("\nTools:\n")

	for _, spec := range catalog {
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Description)
		for _, arg := range spec.Arguments {
			req := "optional"
			if arg.Required {
				req = "required"
			}
			fmt.Fprintf(&sb, "    %s (%s, %s): %s\n", arg.Name, arg.Type, req, arg.Description)
		}
	}

	sb.WriteString("\nOmit \"tool\" and \"arguments\" unless the action is tool.")
	return sb.String()
}
