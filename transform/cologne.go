package transform

import "strings"

// ColognePhonetic computes the Kölner Phonetik code for s (spec §9:
// implemented natively, no cross-language-faithful library exists). Input
// is expected to already be normalized upstream (lowercase, diacritics
// stripped); ColognePhonetic upper-cases and strips non-letters itself
// before encoding.
//
// Algorithm: map each letter to a digit using positional rules (onset vs.
// mid-word context and both neighbours for C; right context for D/T/P;
// left context for X), concatenate,
// collapse consecutive duplicate digits, then strip every '0' except a
// leading one.
func ColognePhonetic(s string) string {
	letters := onlyLetters(strings.ToUpper(s))
	if len(letters) == 0 {
		return ""
	}

	var codes []byte
	for i, c := range letters {
		var prev, next byte
		if i > 0 {
			prev = letters[i-1]
		}
		if i+1 < len(letters) {
			next = letters[i+1]
		}
		codes = append(codes, colognCode(c, prev, next, i == 0)...)
	}

	collapsed := collapseRuns(codes)
	return stripZerosExceptLeading(collapsed)
}

func onlyLetters(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			out = append(out, c)
		}
	}
	return out
}

func isAnyOf(c byte, set string) bool {
	return strings.IndexByte(set, c) >= 0
}

// colognCode returns the 0, 1, or 2 code digits for letter c given its
// neighbors; isOnset reports whether c is the first letter of the string.
func colognCode(c, prev, next byte, isOnset bool) []byte {
	switch c {
	case 'A', 'E', 'I', 'J', 'O', 'U', 'Y':
		return []byte{'0'}
	case 'H':
		return nil
	case 'B':
		return []byte{'1'}
	case 'P':
		if next == 'H' {
			return []byte{'3'}
		}
		return []byte{'1'}
	case 'D', 'T':
		if isAnyOf(next, "CSZ") {
			return []byte{'8'}
		}
		return []byte{'2'}
	case 'F', 'V', 'W':
		return []byte{'3'}
	case 'G', 'K', 'Q':
		return []byte{'4'}
	case 'C':
		if isOnset {
			if isAnyOf(next, "AHKLOQRUX") {
				return []byte{'4'}
			}
			return []byte{'8'}
		}
		if prev == 'S' || prev == 'Z' {
			return []byte{'8'}
		}
		if isAnyOf(next, "AHKOQUX") {
			return []byte{'4'}
		}
		return []byte{'8'}
	case 'X':
		if prev == 'C' || prev == 'K' || prev == 'Q' {
			return []byte{'8'}
		}
		return []byte{'4', '8'}
	case 'L':
		return []byte{'5'}
	case 'M', 'N':
		return []byte{'6'}
	case 'R':
		return []byte{'7'}
	case 'S', 'Z':
		return []byte{'8'}
	default:
		return nil
	}
}

func collapseRuns(codes []byte) []byte {
	out := make([]byte, 0, len(codes))
	for i, c := range codes {
		if i > 0 && codes[i-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}

func stripZerosExceptLeading(codes []byte) string {
	if len(codes) == 0 {
		return ""
	}
	out := make([]byte, 0, len(codes))
	out = append(out, codes[0])
	for _, c := range codes[1:] {
		if c == '0' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
