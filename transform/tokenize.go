package transform

import "strings"

// Token is one q-gram extracted from an attribute's transformed value,
// optionally prefixed with the attribute name to keep identically spelled
// q-grams from different attributes distinct in the encoded bit vector.
type Token struct {
	Attribute string
	Gram      string
}

// String renders the token the way it is hashed: "attribute: gram" when
// prefixed, or the bare gram otherwise.
func (t Token) String() string {
	if t.Attribute == "" {
		return t.Gram
	}
	return t.Attribute + ": " + t.Gram
}

// QGrams splits value into overlapping q-grams of length q, after padding
// both ends with q-1 copies of pad (spec §4.3's tokenize step). attribute
// is recorded on every token when prependAttributeName is set (an empty
// attribute leaves the tokens unprefixed). An empty value yields no tokens,
// so no pad-only q-grams are produced.
func QGrams(attribute, value string, q int, pad rune, prependAttributeName bool) []Token {
	if q <= 0 || value == "" {
		return nil
	}

	padding := strings.Repeat(string(pad), q-1)
	padded := []rune(padding + value + padding)

	if len(padded) < q {
		return nil
	}

	attr := ""
	if prependAttributeName {
		attr = attribute
	}

	tokens := make([]Token, 0, len(padded)-q+1)
	for i := 0; i+q <= len(padded); i++ {
		tokens = append(tokens, Token{Attribute: attr, Gram: string(padded[i : i+q])})
	}
	return tokens
}
