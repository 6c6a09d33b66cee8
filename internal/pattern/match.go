// Package pattern implements SQL LIKE wildcard matching.
//
// '%' matches any run of characters, including the empty run, and '_'
// matches exactly one character. Every other character matches itself.
// There is no escape character.
package pattern

import "github.com/roach88/sieve/internal/compare"

const (
	anyRun  = '%'
	anyRune = '_'
)

// Match reports whether s matches the LIKE pattern. Both sides are NFC
// normalized and, unless caseSensitive is set, lower-cased first.
func Match(s, pattern string, caseSensitive bool) bool {
	return MatchRunes(
		[]rune(compare.Fold(s, caseSensitive)),
		[]rune(compare.Fold(pattern, caseSensitive)),
	)
}

// MatchRunes matches already folded input.
//
// The matcher walks both inputs once and remembers only the most recent '%'
// along with the string offset it was tried at. On a mismatch it resumes
// from that bookmark with the '%' absorbing one more rune. Earlier '%'
// positions never need revisiting, so the worst case is
// O(len(s) * len(pattern)).
func MatchRunes(s, pattern []rune) bool {
	si, pi := 0, 0
	star, mark := -1, 0

	for si < len(s) {
		switch {
		case pi < len(pattern) && pattern[pi] == anyRun:
			star, mark = pi, si
			pi++
		case pi < len(pattern) && (pattern[pi] == anyRune || pattern[pi] == s[si]):
			si++
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == anyRun {
		pi++
	}
	return pi == len(pattern)
}
