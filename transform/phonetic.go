package transform

import (
	"strings"

	"github.com/ul-mds/pprl/pprlerr"
)

// Algorithm selects a phonetic_code scheme (spec §4.3).
type Algorithm string

const (
	Soundex        Algorithm = "soundex"
	RefinedSoundex Algorithm = "refined_soundex"
	Metaphone      Algorithm = "metaphone"
	Cologne        Algorithm = "cologne"
)

func (a Algorithm) Validate() error {
	switch a {
	case Soundex, RefinedSoundex, Metaphone, Cologne:
		return nil
	default:
		return pprlerr.NewConfigError("phonetic_code: unknown algorithm %q", string(a))
	}
}

// Phoneticize dispatches value to the phonetic encoder named by algo.
func Phoneticize(value string, algo Algorithm) (string, error) {
	if err := algo.Validate(); err != nil {
		return "", err
	}
	switch algo {
	case Soundex:
		return soundex(value), nil
	case RefinedSoundex:
		return refinedSoundex(value), nil
	case Metaphone:
		return metaphone(value), nil
	case Cologne:
		return ColognePhonetic(value), nil
	default:
		// unreachable: Validate already rejected anything else
		return "", pprlerr.NewConfigError("phonetic_code: unknown algorithm %q", string(algo))
	}
}

var soundexCodes = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// soundex implements the classic American Soundex: keep the first letter,
// map subsequent letters to digits, collapse adjacent duplicates, drop
// vowels and H/W/Y, and pad or truncate to 4 characters.
func soundex(value string) string {
	letters := onlyLetters(strings.ToUpper(value))
	if len(letters) == 0 {
		return ""
	}

	out := []byte{letters[0]}
	lastCode := soundexCodes[letters[0]]
	for _, c := range letters[1:] {
		code := soundexCodes[c]
		if code != 0 && code != lastCode {
			out = append(out, code)
		}
		if c != 'H' && c != 'W' {
			// H and W are transparent to adjacent-duplicate collapsing;
			// every other letter (including vowels, which carry no code)
			// resets the "last code seen" so a repeated consonant across a
			// vowel is not collapsed.
			lastCode = code
		}
		if len(out) == 4 {
			break
		}
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}

var refinedSoundexCodes = map[byte]byte{
	'B': '1', 'P': '1',
	'F': '2', 'V': '2',
	'C': '3', 'K': '3', 'S': '3',
	'G': '4', 'J': '4',
	'Q': '5', 'X': '5', 'Z': '5',
	'D': '6', 'T': '6',
	'L': '7',
	'M': '8', 'N': '8',
	'R': '9',
}

// refinedSoundex is a higher-resolution Soundex variant (used by some
// record-linkage toolkits in place of plain Soundex): every consonant gets
// its own digit, vowels and H/W/Y keep the preceding digit reachable again,
// and the first letter is retained as a letter followed by its own code.
func refinedSoundex(value string) string {
	letters := onlyLetters(strings.ToUpper(value))
	if len(letters) == 0 {
		return ""
	}

	out := []byte{letters[0]}
	var lastCode byte
	if code, ok := refinedSoundexCodes[letters[0]]; ok {
		out = append(out, code)
		lastCode = code
	}
	for _, c := range letters[1:] {
		code, ok := refinedSoundexCodes[c]
		if !ok {
			lastCode = 0
			continue
		}
		if code != lastCode {
			out = append(out, code)
		}
		lastCode = code
	}
	return string(out)
}

// metaphone is a reduced, deterministic implementation of the Metaphone
// algorithm covering its most common English consonant rules. It is not a
// byte-exact reproduction of Lawrence Philips' original (no example in the
// pack ships a reference implementation to match against); it follows the
// widely documented rule set closely enough to group phonetically similar
// names together, which is the only property spec §4.3 requires.
func metaphone(value string) string {
	letters := onlyLetters(strings.ToUpper(value))
	if len(letters) == 0 {
		return ""
	}
	letters = dedupeAdjacent(letters)

	var out []byte
	n := len(letters)
	for i := 0; i < n; i++ {
		c := letters[i]
		var prev, next byte
		if i > 0 {
			prev = letters[i-1]
		}
		if i+1 < n {
			next = letters[i+1]
		}

		switch {
		case isVowel(c):
			if i == 0 {
				out = append(out, c)
			}
		case c == 'H':
			if i == 0 || isVowel(prev) {
				if isVowel(next) {
					out = append(out, 'H')
				}
			}
		case c == 'C':
			switch {
			case next == 'I' && i+2 < n && letters[i+2] == 'A':
				out = append(out, 'X')
			case next == 'H':
				out = append(out, 'X')
				i++
			case next == 'I' || next == 'E' || next == 'Y':
				out = append(out, 'S')
			default:
				out = append(out, 'K')
			}
		case c == 'G':
			if next == 'H' && i+2 < n && !isVowel(letters[i+2]) {
				// silent GH
			} else if next == 'N' {
				// silent G before N
			} else if next == 'I' || next == 'E' || next == 'Y' {
				out = append(out, 'J')
			} else {
				out = append(out, 'K')
			}
		case c == 'K':
			if prev != 'C' {
				out = append(out, 'K')
			}
		case c == 'P':
			if next == 'H' {
				out = append(out, 'F')
				i++
			} else {
				out = append(out, 'P')
			}
		case c == 'Q':
			out = append(out, 'K')
		case c == 'S':
			if next == 'H' {
				out = append(out, 'X')
				i++
			} else if next == 'I' && i+2 < n && (letters[i+2] == 'O' || letters[i+2] == 'A') {
				out = append(out, 'X')
			} else {
				out = append(out, 'S')
			}
		case c == 'T':
			if next == 'H' {
				out = append(out, '0')
				i++
			} else if next == 'I' && i+2 < n && (letters[i+2] == 'O' || letters[i+2] == 'A') {
				out = append(out, 'X')
			} else {
				out = append(out, 'T')
			}
		case c == 'V':
			out = append(out, 'F')
		case c == 'W', c == 'Y':
			if isVowel(next) {
				out = append(out, c)
			}
		case c == 'X':
			out = append(out, 'K', 'S')
		case c == 'Z':
			out = append(out, 'S')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func isVowel(c byte) bool {
	return isAnyOf(c, "AEIOU")
}

func dedupeAdjacent(letters []byte) []byte {
	out := make([]byte, 0, len(letters))
	for i, c := range letters {
		if i > 0 && letters[i-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}
