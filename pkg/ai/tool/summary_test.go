package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeListRuns(t *testing.T) {
	out := Structured(map[string]interface{}{
		"total": float64(5),
		"runs": []interface{}{
			map[string]interface{}{"id": "r2", "name": "nightly", "status": "completed"},
			map[string]interface{}{"id": "r1", "status": "failed", "created_at": "2026-01-02"},
		},
	})

	assert.Equal(t,
		"Showing 2 of 5 runs:\n- r2 nightly (completed)\n- r1 (failed), created 2026-01-02",
		Summarize(ListRuns, out))
}

func TestSummarizeEmptyRunList(t *testing.T) {
	out := Structured(map[string]interface{}{"runs": []interface{}{}})
	assert.Equal(t, "No evaluation runs found.", Summarize(ListRuns, out))
}

func TestSummarizeMetrics(t *testing.T) {
	out := Structured(map[string]interface{}{
		"run_id": "r7",
		"status": "completed",
		"metrics": map[string]interface{}{
			"recall":   0.5,
			"accuracy": 0.93127,
			"samples":  float64(200),
		},
	})

	assert.Equal(t,
		"Run r7 (completed) metrics:\n- accuracy: 0.9313\n- recall: 0.5\n- samples: 200",
		Summarize(GetSummary, out))
}

func TestSummarizeFallsBackToDump(t *testing.T) {
	out := Structured(map[string]interface{}{"b": float64(1), "a": "x"})
	assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 1\n}", Summarize(GetRun, out))
}

func TestSummarizeTextIsVerbatim(t *testing.T) {
	assert.Equal(t, "  plain\n", Summarize(GetRun, Text("  plain\n")))
	assert.Equal(t, "", Summarize(GetRun, Text("")))
}
