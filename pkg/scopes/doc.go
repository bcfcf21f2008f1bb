// Package scopes implements OAuth-style scope strings: parsing the
// space-separated wire form, wildcard pattern matching, and the set
// operations a token-issuing server needs to decide whether a requested
// scope list is permitted.
//
// # Conventions
//
// A scope is an opaque permission token such as "admin.read". Three
// syntactic rules apply:
//
//   - Separator (" ") joins scopes in their external string form.
//   - Delimiter (".") splits a scope into segments.
//   - Wildcard ("*") inside a pattern matches zero or more characters of
//     exactly one segment. "admin.*" covers "admin.read" but not "admin"
//     and not "admin.read.write".
//
// Matching is always anchored to the whole candidate; a pattern without a
// wildcard matches only itself. Compiled patterns are memoized, so testing
// many candidates against the same pattern costs one compilation.
//
// # Usage
//
//	requested := scopes.Parse("admin.read billing")
//	permitted := []string{"admin.*", "billing"}
//
//	if !scopes.HasAll(permitted, requested) {
//	    // reject the grant
//	}
//
// Equal compares scope lists as multisets: order is ignored but duplicate
// counts are not, so ["a","a"] differs from ["a"].
//
// See RFC 6749 §3.3 for the formal definition of the scope parameter.
package scopes
