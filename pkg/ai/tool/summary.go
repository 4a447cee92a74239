package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Summarize renders an Outcome as the text streamed back to the user. The
// run listing and run summary tools get a compact human format; every other
// structured result is dumped as indented JSON.
func Summarize(name string, o Outcome) string {
	if !o.IsStructured() {
		return o.Text
	}

	raw, err := json.Marshal(o.Data)
	if err != nil {
		return fmt.Sprintf("%v", o.Data)
	}
	doc := gjson.ParseBytes(raw)

	switch name {
	case ListRuns:
		if runs := doc.Get("runs"); runs.IsArray() {
			return summarizeRuns(runs.Array(), doc.Get("total"))
		}
	case GetSummary:
		if metrics := doc.Get("metrics"); metrics.IsObject() {
			return summarizeMetrics(doc, metrics)
		}
	}
	return dump(raw)
}

func summarizeRuns(runs []gjson.Result, total gjson.Result) string {
	if len(runs) == 0 {
		return "No evaluation runs found."
	}

	var sb strings.Builder
	count := len(runs)
	if total.Exists() && int(total.Int()) > count {
		fmt.Fprintf(&sb, "Showing %d of %d runs:", count, total.Int())
	} else {
		fmt.Fprintf(&sb, "Found %d runs:", count)
	}
	for _, run := range runs {
		sb.WriteString("\n- ")
		sb.WriteString(firstString(run, "id", "run_id"))
		if name := run.Get("name").String(); name != "" {
			sb.WriteString(" ")
			sb.WriteString(name)
		}
		if status := run.Get("status").String(); status != "" {
			fmt.Fprintf(&sb, " (%s)", status)
		}
		if created := run.Get("created_at").String(); created != "" {
			fmt.Fprintf(&sb, ", created %s", created)
		}
	}
	return sb.String()
}

func summarizeMetrics(doc, metrics gjson.Result) string {
	var sb strings.Builder
	sb.WriteString("Run ")
	sb.WriteString(firstString(doc, "run_id", "id"))
	if status := doc.Get("status").String(); status != "" {
		fmt.Fprintf(&sb, " (%s)", status)
	}
	sb.WriteString(" metrics:")

	if len(metrics.Map()) == 0 {
		sb.WriteString(" none recorded")
		return sb.String()
	}
	metrics.ForEach(func(key, value gjson.Result) bool {
		fmt.Fprintf(&sb, "\n- %s: %s", key.String(), metricValue(value))
		return true
	})
	return sb.String()
}

func metricValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v.Float()), "0"), ".")
	case gjson.String:
		return v.String()
	default:
		return v.Raw
	}
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := doc.Get(key); v.Exists() {
			return v.String()
		}
	}
	return "?"
}

func dump(raw []byte) string {
	return strings.TrimSpace(string(pretty.PrettyOptions(raw, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: true,
	})))
}
