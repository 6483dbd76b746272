package textutil

import (
	"strings"
	"unicode"
)

// IsPalindrome reports whether s reads the same both ways once everything
// except letters and digits is dropped and case is folded.
func IsPalindrome(s string) bool {
	runes := normalize(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

func normalize(s string) []rune {
	s = strings.ToLower(s)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}
