package scopes

import (
	"regexp"
	"strings"

	"github.com/grantkit/grantkit/pkg/cache"
)

// matchers memoizes compiled patterns. A grant validates every requested
// scope against the same handful of client and server patterns, so the
// pattern set is small and hot.
var matchers = cache.New[string, *regexp.Regexp](1024)

// compile builds an anchored matcher for a scope pattern. Every literal
// character is quoted; each '*' matches zero or more characters inside a
// single segment and never crosses a Delimiter.
func compile(pattern string) *regexp.Regexp {
	if re, ok := matchers.Get(pattern); ok {
		return re
	}

	expr := `\A` + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, `[^.]*`) + `\z`
	re := regexp.MustCompile(expr)
	matchers.Put(pattern, re)
	return re
}

// Match reports whether candidate is covered by pattern.
//
// A pattern without a wildcard matches only itself. "admin.*" matches
// "admin.read" but neither "admin" nor "admin.read.write": one wildcard
// covers exactly one segment. The whole candidate must match; there are no
// partial matches.
func Match(pattern, candidate string) bool {
	if !strings.Contains(pattern, Wildcard) {
		return pattern == candidate
	}
	return compile(pattern).MatchString(candidate)
}
