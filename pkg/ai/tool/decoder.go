package tool

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// Decode normalizes a tools/call response into an Outcome. It looks at the
// JSON-RPC "result" member when present, otherwise at the whole body, and
// picks the first shape that matches:
//
//  1. "structuredContent" holding an object
//  2. "content" items: type=json returns the item's object payload, type=text
//     returns the parsed object when the text is a JSON object and the raw
//     text otherwise
//  3. anything else is returned as the raw JSON text
//
// Decode never fails.
func Decode(body []byte) Outcome {
	body = bytes.TrimSpace(unwrapSSE(body))
	if len(body) == 0 {
		return Text("")
	}
	if !gjson.ValidBytes(body) {
		return Text(string(body))
	}

	root := gjson.ParseBytes(body)
	if result := root.Get("result"); result.Exists() {
		root = result
	}

	if sc := root.Get("structuredContent"); sc.IsObject() {
		if data, ok := asMap(sc); ok {
			return Structured(data)
		}
	}

	if items := root.Get("content"); items.IsArray() {
		for _, item := range items.Array() {
			if out, ok := decodeItem(item); ok {
				return out
			}
		}
	}

	if root.Type == gjson.String {
		return Text(root.String())
	}
	return Text(root.Raw)
}

func decodeItem(item gjson.Result) (Outcome, bool) {
	switch strings.ToLower(item.Get("type").String()) {
	case "json":
		for _, key := range []string{"json", "data"} {
			if payload := item.Get(key); payload.IsObject() {
				if data, ok := asMap(payload); ok {
					return Structured(data), true
				}
			}
		}
		return Outcome{}, false
	case "text":
		text := item.Get("text").String()
		trimmed := strings.TrimSpace(text)
		if gjson.Valid(trimmed) {
			if parsed := gjson.Parse(trimmed); parsed.IsObject() {
				if data, ok := asMap(parsed); ok {
					return Structured(data), true
				}
			}
		}
		return Text(text), true
	default:
		return Outcome{}, false
	}
}

func asMap(r gjson.Result) (map[string]interface{}, bool) {
	data, ok := r.Value().(map[string]interface{})
	return data, ok
}

// unwrapSSE returns the last "data:" payload of a text/event-stream body.
// Streamable HTTP tool servers may answer a single call that way.
func unwrapSSE(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("event:")) && !bytes.HasPrefix(trimmed, []byte("data:")) {
		return body
	}
	var last []byte
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if payload, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			last = bytes.TrimSpace(payload)
		}
	}
	if last == nil {
		return body
	}
	return last
}
