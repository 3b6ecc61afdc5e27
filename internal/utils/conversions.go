package utils

import "strings"

// NormID trims an identifier for comparison. Empty after trimming means
// "no id".
func NormID(s string) string {
	return strings.TrimSpace(s)
}

// NormIDs trims a list of identifiers, drops empties and removes
// duplicates keeping the first occurrence.
func NormIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		id := NormID(v)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
