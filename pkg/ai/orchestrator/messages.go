package orchestrator

import (
	"fmt"
	"time"
)

// User-facing texts.
const (
	Greeting = "Hi! Ask me about your evaluation runs, metrics, or documentation."

	MsgEmptyMessage      = "message must not be empty"
	MsgCouldNotInterpret = "Sorry, I could not interpret that request."
	MsgToolNameMissing   = "Tool name is missing, so no tool was called."
	MsgNoDocuments       = "No relevant documents were found for that question."
	MsgNoAnswer          = "Sorry, I could not generate an answer."
	MsgInternal          = "internal error"

	StatusThinking    = "thinking"
	StatusClassifying = "classifying"
	StatusSearching   = "searching docs"
	StatusRunningTool = "running tool"
)

func toolTimeoutMessage(name string, d time.Duration) string {
	return fmt.Sprintf("tool %q timed out after %s", name, d)
}

func toolFailedMessage(name string, err error) string {
	return fmt.Sprintf("tool %q failed: %v", name, err)
}

func retrievalTimeoutMessage(d time.Duration) string {
	return fmt.Sprintf("retrieval timed out after %s", d)
}

func elapsedMessage(d time.Duration) string {
	return fmt.Sprintf("completed in %.1fs", d.Seconds())
}
