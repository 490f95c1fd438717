package transform

import (
	"errors"
	"testing"

	"github.com/ul-mds/pprl/pprlerr"
)

func TestNormalizeScenario(t *testing.T) {
	got := Normalize("Müller-Ludenscheidt")
	want := "muller-ludenscheidt"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, s := range []string{"Müller-Ludenscheidt", "  Jürgen   Groß  ", "plain"} {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent on %q: %q vs %q", s, once, twice)
		}
	}
}

func TestColognePhoneticScenario(t *testing.T) {
	normalized := Normalize("Müller-Ludenscheidt")
	got := ColognePhonetic(normalized)
	want := "65752682"
	if got != want {
		t.Fatalf("ColognePhonetic(%q) = %q, want %q", normalized, got, want)
	}
}

func TestPhoneticizeDispatch(t *testing.T) {
	got, err := Phoneticize("muller-ludenscheidt", Cologne)
	if err != nil {
		t.Fatalf("Phoneticize: %v", err)
	}
	if got != "65752682" {
		t.Fatalf("Phoneticize(Cologne) = %q, want %q", got, "65752682")
	}

	if _, err := Phoneticize("smith", Algorithm("bogus")); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestSoundexKnownPairs(t *testing.T) {
	cases := map[string]string{
		"Robert":  "R163",
		"Rupert":  "R163",
		"Rubin":   "R150",
		"Ashcraft": "A261",
		"Tymczak": "T522",
	}
	for in, want := range cases {
		if got := soundex(in); got != want {
			t.Errorf("soundex(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMappingInlineLongestMatchFirst(t *testing.T) {
	table := map[string]string{
		"st":     "street",
		"street": "st.",
	}
	got, err := ApplyMapping("main street", table, nil, true)
	if err != nil {
		t.Fatalf("ApplyMapping: %v", err)
	}
	want := "main st."
	if got != want {
		t.Fatalf("ApplyMapping() = %q, want %q", got, want)
	}
}

func TestMappingLookupFallsBackToDefault(t *testing.T) {
	def := "unknown"
	got, err := ApplyMapping("xyz", map[string]string{"abc": "ABC"}, &def, false)
	if err != nil {
		t.Fatalf("ApplyMapping: %v", err)
	}
	if got != def {
		t.Fatalf("ApplyMapping() = %q, want %q", got, def)
	}
}

func TestMappingLookupErrorsWithoutDefault(t *testing.T) {
	_, err := ApplyMapping("xyz", map[string]string{"abc": "ABC"}, nil, false)
	if err == nil {
		t.Fatalf("expected error for unmapped value with no default")
	}
	if _, ok := err.(*pprlerr.ConfigError); ok {
		t.Fatalf("mapping miss should not be a ConfigError: %v", err)
	}
}

// TestMappingMissWrapsAsInputError exercises the full pipeline path: a
// mapping miss with no default must surface as a pprlerr.InputError (one
// entity's value failed, not a configuration problem), the way spec §7
// classifies it.
func TestMappingMissWrapsAsInputError(t *testing.T) {
	p := Pipeline{PerAttribute: map[string][]Transform{
		"country": {{Kind: KindMapping, MappingTable: map[string]string{"DE": "Germany"}}},
	}}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	_, err := p.Apply("e1", "country", "FR")
	if err == nil {
		t.Fatalf("expected error for unmapped value")
	}
	var inputErr *pprlerr.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected a pprlerr.InputError, got %T: %v", err, err)
	}
}

func TestFormatNumberRoundsHalfToEven(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"2.5", 0, "2"},
		{"3.5", 0, "4"},
		{"1.005", 2, "1.00"},
		{"1.25", 1, "1.2"},
	}
	for _, c := range cases {
		got, err := FormatNumber(c.in, c.decimals)
		if err != nil {
			t.Fatalf("FormatNumber(%q, %d): %v", c.in, c.decimals, err)
		}
		if got != c.want {
			t.Errorf("FormatNumber(%q, %d) = %q, want %q", c.in, c.decimals, got, c.want)
		}
	}
}

func TestFormatNumberRejectsNonNumeric(t *testing.T) {
	if _, err := FormatNumber("not-a-number", 2); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
}

func TestReformatDateTimeRoundTrip(t *testing.T) {
	got, err := ReformatDateTime("2023-05-17", "%Y-%m-%d", "%d.%m.%Y")
	if err != nil {
		t.Fatalf("ReformatDateTime: %v", err)
	}
	if got != "17.05.2023" {
		t.Fatalf("ReformatDateTime() = %q, want %q", got, "17.05.2023")
	}
}

func TestReformatDateTimeRejectsMismatchedLayout(t *testing.T) {
	if _, err := ReformatDateTime("not-a-date", "%Y-%m-%d", "%d.%m.%Y"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestQGramsPadding(t *testing.T) {
	tokens := QGrams("", "ab", 2, '_', false)
	want := []string{"_a", "ab", "b_"}
	if len(tokens) != len(want) {
		t.Fatalf("QGrams returned %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Gram != want[i] {
			t.Errorf("token %d = %q, want %q", i, tok.Gram, want[i])
		}
	}
}

func TestQGramsPrependsAttributeName(t *testing.T) {
	tokens := QGrams("firstname", "ab", 2, '_', true)
	for _, tok := range tokens {
		if tok.Attribute != "firstname" {
			t.Fatalf("token attribute = %q, want %q", tok.Attribute, "firstname")
		}
	}
	if tokens[0].String() != "firstname: _a" {
		t.Fatalf("token.String() = %q", tokens[0].String())
	}
}

func TestQGramsEmptyValue(t *testing.T) {
	if tokens := QGrams("a", "", 2, '_', true); tokens != nil {
		t.Fatalf("expected nil tokens for empty value, got %v", tokens)
	}
}

func TestPipelineEmptyValueHandling(t *testing.T) {
	p := Pipeline{
		Before:             []Transform{{Kind: KindNormalize}},
		EmptyValueHandling: EmptySkip,
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	res, err := p.Apply("e1", "middle_name", "   ")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Skip {
		t.Fatalf("expected Skip=true for empty value under EmptySkip policy")
	}
}

func TestPipelineEmptyValueErrorPolicy(t *testing.T) {
	p := Pipeline{
		Before:             []Transform{{Kind: KindNormalize}},
		EmptyValueHandling: EmptyError,
	}
	_, err := p.Apply("e1", "middle_name", "")
	if _, ok := err.(*pprlerr.EmptyValueError); !ok {
		t.Fatalf("expected *pprlerr.EmptyValueError, got %v (%T)", err, err)
	}
}

func TestPipelineRunsPerAttributeTransforms(t *testing.T) {
	p := Pipeline{
		PerAttribute: map[string][]Transform{
			"dob": {{Kind: KindDateTime, InFormat: "%Y-%m-%d", OutFormat: "%d.%m.%Y"}},
		},
	}
	res, err := p.Apply("e1", "dob", "2000-01-02")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Value != "02.01.2000" {
		t.Fatalf("Apply() = %q, want %q", res.Value, "02.01.2000")
	}
}
