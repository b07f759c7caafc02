package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "splits comma separated values",
			input:    []string{"a,b", "c"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  foo , bar  "},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "keeps duplicates in order",
			input:    []string{"g1", "g2", "g1"},
			expected: []string{"g1", "g2", "g1"},
		},
		{
			name:     "drops empty elements",
			input:    []string{"", " , ", "x"},
			expected: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAndTrim(tt.input))
		})
	}
}

func TestJoinScopes(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "single scope", input: []string{"openid"}, expected: "openid"},
		{name: "space separated", input: []string{"openid profile"}, expected: "openid profile"},
		{name: "mixed separators", input: []string{"openid,profile", " email "}, expected: "openid profile email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinScopes(tt.input))
		})
	}
}
