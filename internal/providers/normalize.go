package providers

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// NoResponse is substituted whenever a vendor payload lacks the expected text field.
const NoResponse = "(no response)"

// Result is the normalized outcome of a single provider call.
type Result struct {
	Text        string             `json:"text"`
	RawResponse json.RawMessage    `json:"raw_response"`
	Usage       map[string]float64 `json:"usage"`
}

func newResult(raw []byte, text string, usage map[string]float64) Result {
	if usage == nil {
		usage = map[string]float64{}
	}
	return Result{Text: text, RawResponse: json.RawMessage(raw), Usage: usage}
}

// textAt returns the text found at path, or NoResponse when it is absent or null.
func textAt(raw []byte, path string) string {
	if text, ok := extractText(gjson.GetBytes(raw, path)); ok {
		return text
	}
	return NoResponse
}

// extractText flattens a string or a list of text parts into plain text.
func extractText(r gjson.Result) (string, bool) {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return "", false
	case r.Type == gjson.String:
		return r.Str, true
	case r.IsArray():
		parts := make([]string, 0)
		r.ForEach(func(_, item gjson.Result) bool {
			if item.Type == gjson.String {
				parts = append(parts, item.Str)
				return true
			}
			if kind := item.Get("type"); kind.Exists() && kind.String() != "text" {
				return true
			}
			if text := item.Get("text"); text.Type == gjson.String {
				parts = append(parts, text.Str)
			}
			return true
		})
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "\n"), true
	default:
		return r.Raw, true
	}
}

// usageAt collects numeric token counters under path. Nested objects are
// flattened with dotted keys; non-numeric values are skipped.
func usageAt(raw []byte, path string) map[string]float64 {
	out := map[string]float64{}
	r := gjson.GetBytes(raw, path)
	if !r.IsObject() {
		return out
	}
	flattenUsage("", r, out)
	return out
}

func flattenUsage(prefix string, r gjson.Result, out map[string]float64) {
	r.ForEach(func(key, value gjson.Result) bool {
		name := prefix + key.String()
		switch {
		case value.Type == gjson.Number:
			out[name] = value.Float()
		case value.IsObject():
			flattenUsage(name+".", value, out)
		}
		return true
	})
}
