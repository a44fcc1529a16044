package dictionary

import "unicode"

// MatchNumbered reports whether query could spell the same syllables as the
// stored numbered pinyin. Spaces on either side are ignored, a tone digit
// present on only one side is skipped, and trailing digits or spaces are
// ignored once the other string is exhausted. So "liu" matches "liu2" and
// "ni3hao3" matches "ni3 hao3", while "liu4" does not match "liu2".
//
// The walk is greedy and never backtracks. On a mismatch the stored side is
// examined before the query side in every branch, and callers rely on that
// order for ambiguous input such as "ha3o", which matches "hao3".
func MatchNumbered(stored, query string) bool {
	a, b := []rune(stored), []rune(query)
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i >= len(a):
			if !isToneNoise(b[j]) {
				return false
			}
			j++
		case j >= len(b):
			if !isToneNoise(a[i]) {
				return false
			}
			i++
		case a[i] == b[j]:
			i++
			j++
		case a[i] == ' ':
			i++
		case b[j] == ' ':
			j++
		case unicode.IsDigit(a[i]) && !unicode.IsDigit(b[j]):
			i++
		case unicode.IsDigit(b[j]) && !unicode.IsDigit(a[i]):
			j++
		default:
			return false
		}
	}
	return true
}

func isToneNoise(r rune) bool {
	return r == ' ' || unicode.IsDigit(r)
}
