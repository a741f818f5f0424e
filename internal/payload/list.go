package payload

import (
	"encoding/json"
	"strings"
)

// ParseStringList reads product images or amenities stored either as a JSON
// array string or as a comma separated list.
func ParseStringList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
			return compact(list)
		}
		trimmed = strings.Trim(trimmed, "[]")
	}
	return compact(strings.Split(trimmed, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), `"`)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
