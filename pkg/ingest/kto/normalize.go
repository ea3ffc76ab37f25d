package kto

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/kauni/pkg/vector"
)

// field is a labelled text line and the item keys that may carry it, in
// order of preference.
type field struct {
	label string
	keys  []string
}

var textFields = []field{
	{label: "제목", keys: []string{"title", "name", "facltNm"}},
	{label: "주소", keys: []string{"addr1", "addr", "address"}},
	{label: "연락처", keys: []string{"tel", "phone"}},
	{label: "분류", keys: []string{"cat3", "cat2", "cat1"}},
}

var descriptionKeys = []string{"overview", "descr", "description", "intro"}

// ItemToDocument assembles the document text from whichever aliased fields
// are present and keeps every other field, except the overview, as metadata
// tagged with source "kto".
func ItemToDocument(item map[string]any) vector.Document {
	lines := make([]string, 0, len(textFields)+1)
	for _, f := range textFields {
		if v := firstValue(item, f.keys); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}
	if v := firstValue(item, descriptionKeys); v != "" {
		lines = append(lines, v)
	}

	metadata := make(map[string]any, len(item)+1)
	for k, v := range item {
		if k == "overview" {
			continue
		}
		metadata[k] = v
	}
	metadata["source"] = "kto"

	return vector.Document{
		Content:  strings.TrimSpace(strings.Join(lines, "\n")),
		Metadata: metadata,
	}
}

func firstValue(item map[string]any, keys []string) string {
	for _, k := range keys {
		if s := stringify(item[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
