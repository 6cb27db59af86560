// Package textnorm holds the normalization shared by intent matching and
// catalog name lookups, so both sides compare the same form of a string.
package textnorm

import "strings"

// stripped is the punctuation removed before matching. Apostrophes go too,
// so "what's" and "whats" compare equal.
const stripped = ".,/#!$%^&*;:{}=-_`~()?'\u2019"

// Normalize lowercases s, drops the stripped punctuation set and collapses
// runs of whitespace to a single space.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}
