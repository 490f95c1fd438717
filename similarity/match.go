package similarity

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ul-mds/pprl/bitvec"
)

// Record pairs an opaque identifier with the bit vector to be matched.
type Record struct {
	ID     string
	Vector *bitvec.BitVector
}

// Pair is an emitted match: a domain/range identifier pair and their
// similarity under the configured measure.
type Pair struct {
	DomainID   string
	RangeID    string
	Similarity float64
}

// MatchConfig configures the matching driver.
type MatchConfig struct {
	Measure   Measure
	Threshold float64
}

// Validate checks the configuration is well-formed.
func (c MatchConfig) Validate() error {
	switch c.Measure {
	case Dice, Cosine, Jaccard:
	default:
		return fmt.Errorf("similarity: unsupported measure %q", c.Measure)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("similarity: threshold must be in [0,1], got %v", c.Threshold)
	}
	return nil
}

// workerCount follows the same convention as mask.MaskBatch: 0 means a single
// goroutine (the safe default), negative means auto-detect, positive is
// taken literally.
func workerCount(n int) int {
	if n == 0 {
		return 1
	}
	if n > 0 {
		return n
	}
	procs := runtime.GOMAXPROCS(-1)
	cpus := runtime.NumCPU()
	if procs > cpus {
		return cpus
	}
	return procs
}

// Match computes the Cartesian product of domain and range, emitting every
// pair whose similarity meets the configured threshold. Emission order
// follows the outer iteration over domain, then the inner iteration over
// range — workers, if more than one is used, each own a contiguous slice of
// domain so that concatenating their results in partition order reproduces
// the single-threaded order exactly.
func Match(cfg MatchConfig, domain, rng []Record, workers int) ([]Pair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := workerCount(workers)
	if n > len(domain) {
		n = len(domain)
	}
	if n <= 1 || len(domain) == 0 {
		return matchRange(cfg, domain, rng)
	}

	chunk := (len(domain) + n - 1) / n
	results := make([][]Pair, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(domain) {
			end = len(domain)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			results[w], errs[w] = matchRange(cfg, domain[start:end], rng)
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var out []Pair
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// matchRange performs the sequential domain x range scan for one partition
// of domain.
func matchRange(cfg MatchConfig, domain, rng []Record) ([]Pair, error) {
	var out []Pair
	for _, d := range domain {
		for _, r := range rng {
			sim, err := Compute(cfg.Measure, d.Vector, r.Vector)
			if err != nil {
				return nil, fmt.Errorf("similarity: matching %q against %q: %w", d.ID, r.ID, err)
			}
			if sim >= cfg.Threshold {
				out = append(out, Pair{DomainID: d.ID, RangeID: r.ID, Similarity: sim})
			}
		}
	}
	return out, nil
}
