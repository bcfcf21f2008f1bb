package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grantkit/grantkit/pkg/scopes"
)

func TestMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		pattern   string
		candidate string
		expected  bool
	}{
		{
			name:      "literal match",
			pattern:   "admin.read",
			candidate: "admin.read",
			expected:  true,
		},
		{
			name:      "literal mismatch",
			pattern:   "admin.read",
			candidate: "admin.write",
			expected:  false,
		},
		{
			name:      "literal never matches prefix",
			pattern:   "admin",
			candidate: "admin.read",
			expected:  false,
		},
		{
			name:      "wildcard covers one segment",
			pattern:   "admin.*",
			candidate: "admin.read",
			expected:  true,
		},
		{
			name:      "wildcard does not match missing segment",
			pattern:   "admin.*",
			candidate: "admin",
			expected:  false,
		},
		{
			name:      "wildcard never crosses a dot",
			pattern:   "admin.*",
			candidate: "admin.read.write",
			expected:  false,
		},
		{
			name:      "wildcard wrong namespace",
			pattern:   "admin.*",
			candidate: "user.read",
			expected:  false,
		},
		{
			name:      "wildcard is zero width",
			pattern:   "admin.*",
			candidate: "admin.",
			expected:  true,
		},
		{
			name:      "bare wildcard matches single segment",
			pattern:   "*",
			candidate: "read",
			expected:  true,
		},
		{
			name:      "bare wildcard rejects two segments",
			pattern:   "*",
			candidate: "a.b",
			expected:  false,
		},
		{
			name:      "bare wildcard matches empty",
			pattern:   "*",
			candidate: "",
			expected:  true,
		},
		{
			name:      "interior wildcard",
			pattern:   "a.*.c",
			candidate: "a.b.c",
			expected:  true,
		},
		{
			name:      "interior wildcard segment count must agree",
			pattern:   "a.*.c",
			candidate: "a.b.b.c",
			expected:  false,
		},
		{
			name:      "partial segment wildcard",
			pattern:   "read:*",
			candidate: "read:users",
			expected:  true,
		},
		{
			name:      "regex metacharacters are literal",
			pattern:   "a+b",
			candidate: "ab",
			expected:  false,
		},
		{
			name:      "empty pattern matches only empty",
			pattern:   "",
			candidate: "read",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, scopes.Match(tt.pattern, tt.candidate))
		})
	}
}

func TestMatch_MemoizedPatternStaysCorrect(t *testing.T) {
	t.Parallel()

	// Same pattern against many candidates exercises the matcher cache.
	for range 3 {
		assert.True(t, scopes.Match("billing.*", "billing.invoices"))
		assert.False(t, scopes.Match("billing.*", "billing.invoices.read"))
	}
}
