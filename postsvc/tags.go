package postsvc

import (
	"encoding/json"
	"strings"
)

// TagList accepts either a comma-separated string or a JSON array, matching
// what the web and Android clients send.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TagList(strings.Split(s, ","))
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*t = TagList(arr)
	return nil
}

// NormalizeTags trims each tag, drops empties and deduplicates while
// preserving first-seen order. Never returns nil.
func NormalizeTags(raw []string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
