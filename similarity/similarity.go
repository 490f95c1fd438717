// Package similarity computes set-similarity between equal-length bit
// vectors and drives the exhaustive pairwise matching scan described in
// spec §4.5. There is no indexing or blocking here — every (domain, range)
// pair is scanned and compared, by design (spec §1 non-goals).
package similarity

import (
	"github.com/ul-mds/pprl/bitvec"
	"github.com/ul-mds/pprl/pprlerr"
	"math"
)

// Measure names one of the three supported similarity measures.
type Measure string

const (
	Dice    Measure = "dice"
	Cosine  Measure = "cosine"
	Jaccard Measure = "jaccard"
)

// Compute returns the similarity between a and b under the given measure.
// a and b must have equal length; otherwise Compute returns a
// *pprlerr.LengthMismatchError rather than panicking, so callers matching
// vectors read off the wire get a recoverable error.
func Compute(measure Measure, a, b *bitvec.BitVector) (float64, error) {
	if a.Len() != b.Len() {
		return 0, &pprlerr.LengthMismatchError{Want: a.Len(), Got: b.Len(), Context: "similarity.Compute"}
	}

	na := a.Popcount()
	nb := b.Popcount()
	nab := a.And(b).Popcount()

	switch measure {
	case Dice:
		if na+nb == 0 {
			return 0, nil
		}
		return 2 * float64(nab) / float64(na+nb), nil
	case Cosine:
		if na == 0 || nb == 0 {
			return 0, nil
		}
		return float64(nab) / math.Sqrt(float64(na)*float64(nb)), nil
	case Jaccard:
		denom := na + nb - nab
		if denom == 0 {
			return 0, nil
		}
		return float64(nab) / float64(denom), nil
	default:
		return 0, pprlerr.NewConfigError("unsupported similarity measure %q", measure)
	}
}
