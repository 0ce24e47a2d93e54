// Package strings holds small helpers for list-valued configuration.
package strings

import "strings"

// SplitList splits a comma-separated value, trimming each element and
// dropping empties and duplicates. Order is preserved.
//
//	SplitList(" http://a.test, http://b.test,,http://a.test")
//	// []string{"http://a.test", "http://b.test"}
func SplitList(value string) []string {
	return DedupeAndTrim(strings.Split(value, ","))
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element.
func DedupeAndTrim(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
