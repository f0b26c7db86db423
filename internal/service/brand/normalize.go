// Package brand implements the Brand Registry & Normalizer (C1): it
// decides whether a merchant VPA is attempting to impersonate a known
// brand via Unicode confusables, leetspeak, or a near-miss spelling.
package brand

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// leetSubstitutions is the fixed leetspeak map applied after lowercasing.
var leetSubstitutions = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'@': 'a',
	'$': 's',
	'!': 'i',
	'3': 'e',
}

// Normalize applies NFKC normalization, lowercasing, and the leetspeak
// substitution table to produce the normalized candidate used for brand
// matching. Detection is normalization-stable: check(vpa) = check(normalize(vpa)).
func Normalize(s string) string {
	folded := norm.NFKC.String(s)
	folded = strings.ToLower(folded)

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if repl, ok := leetSubstitutions[r]; ok {
			sb.WriteRune(repl)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SplitVPA splits a VPA of the form "local@handle" into its two parts.
// Normalization only ever applies to the local part. If there is no "@",
// the whole string is treated as the local part and handle is empty.
func SplitVPA(vpa string) (local, handle string) {
	idx := strings.Index(vpa, "@")
	if idx < 0 {
		return vpa, ""
	}
	return vpa[:idx], vpa[idx+1:]
}
