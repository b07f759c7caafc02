// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitAndTrim splits each value on commas, trims whitespace from every
// element, and drops empty elements. Order and duplicates are preserved so
// that the remote side sees exactly what the caller listed.
//
// Example:
//
//	SplitAndTrim([]string{" a, b", "a", " ,"})
//	// Returns: []string{"a", "b", "a"}
func SplitAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			result = append(result, trimmed)
		}
	}

	return result
}

// JoinScopes normalises a scope list into the space-delimited form used on
// the wire. Elements may themselves contain several space- or comma-separated
// scopes.
//
// Example:
//
//	JoinScopes([]string{"openid,profile", " email "})
//	// Returns: "openid profile email"
func JoinScopes(values []string) string {
	var scopes []string
	for _, v := range values {
		scopes = append(scopes, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	return strings.Join(scopes, " ")
}
