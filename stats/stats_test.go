package stats

import (
	"math"
	"testing"

	"github.com/ul-mds/pprl/filterspec"
)

func TestComputeAverageTokensAndEntropy(t *testing.T) {
	attrs := []filterspec.AttributeConfig{{Name: "firstname", Q: 2, Pad: '_'}}
	population := []Entity{
		{Attributes: map[string]string{"firstname": "ab"}},
		{Attributes: map[string]string{"firstname": "ab"}},
	}

	got := Compute(attrs, population)
	res, ok := got["firstname"]
	if !ok {
		t.Fatalf("missing stats for firstname")
	}

	// "ab" padded with q-1=1 char each side -> "_ab_" -> 3 q-grams: "_a","ab","b_"
	if res.AverageTokens != 3 {
		t.Fatalf("AverageTokens = %v, want 3", res.AverageTokens)
	}

	// Identical inputs across the population yield a uniform distribution
	// over exactly 3 distinct grams -> entropy = log2(3).
	want := math.Log2(3)
	if math.Abs(res.NGramEntropy-want) > 1e-9 {
		t.Fatalf("NGramEntropy = %v, want %v", res.NGramEntropy, want)
	}
}

func TestComputeSkipsAbsentAttributeValues(t *testing.T) {
	attrs := []filterspec.AttributeConfig{{Name: "middlename", Q: 2, Pad: '_'}}
	population := []Entity{
		{Attributes: map[string]string{}},
		{Attributes: map[string]string{"middlename": ""}},
	}

	got := Compute(attrs, population)
	if got["middlename"].AverageTokens != 0 {
		t.Fatalf("expected zero average tokens when attribute is never present")
	}
}
