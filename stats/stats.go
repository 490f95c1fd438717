// Package stats computes per-attribute population statistics used to
// derive RBF/CLK-RBF weights (spec §4.6): average token count and n-gram
// entropy. Sampling follows internal/indexer/indexer.go's
// calculateFingerprint/Scanner.GetStats style — a single pass accumulating
// counts into maps, no persistence, report-at-the-end.
package stats

import (
	"math"

	"github.com/ul-mds/pprl/filterspec"
	"github.com/ul-mds/pprl/transform"
)

// Attribute reports the average token count and n-gram entropy observed
// for one attribute across a population of entities.
type Attribute struct {
	AverageTokens float64
	NGramEntropy  float64
}

// Entity is the minimal shape stats needs: an attribute-name-to-value map,
// already run through the transform pipeline (spec §4.6 operates on
// "normalized attribute strings").
type Entity struct {
	Attributes map[string]string
}

// Compute returns per-attribute statistics over population, tokenizing
// each configured attribute's present values the same way the masking
// engine would (spec §4.6: "over a population of entities with normalized
// attribute strings").
func Compute(attrs []filterspec.AttributeConfig, population []Entity) map[string]Attribute {
	out := make(map[string]Attribute, len(attrs))

	for _, ac := range attrs {
		tokenCounts := 0
		present := 0
		gramCounts := make(map[string]int)
		totalGrams := 0

		for _, e := range population {
			value, ok := e.Attributes[ac.Name]
			if !ok || value == "" {
				continue
			}
			present++
			tokens := transform.QGrams(ac.Name, value, ac.Q, ac.Pad, false)
			tokenCounts += len(tokens)
			for _, tok := range tokens {
				gramCounts[tok.Gram]++
				totalGrams++
			}
		}

		avg := 0.0
		if present > 0 {
			avg = float64(tokenCounts) / float64(present)
		}

		out[ac.Name] = Attribute{
			AverageTokens: avg,
			NGramEntropy:  entropy(gramCounts, totalGrams),
		}
	}

	return out
}

// entropy computes the Shannon entropy (base 2) of the empirical
// distribution described by counts summing to total.
func entropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}
