// Package mask implements the masking engine (spec §4.4): it tokenizes
// each entity's attributes, hashes tokens into bit positions under the
// configured scheme and digest, inserts them into a CLK, RBF, or CLK-RBF
// filter, and runs the result through an ordered hardener chain.
//
// Orchestration follows internal/indexer/indexer.go's pipelined shape:
// validate configuration once, then fan work out across a bounded worker
// pool, each worker owning a deterministic contiguous slice of the input
// so that results can be reassembled in input order — not a hash-sharded
// pool, since masking output order is caller-visible (spec §3: "the core
// ... does not rely on ordering" refers to identifiers, but this engine
// preserves order anyway since it costs nothing and simplifies testing).
package mask

import (
	"runtime"
	"sort"
	"sync"

	"github.com/ul-mds/pprl/bitvec"
	"github.com/ul-mds/pprl/digest"
	"github.com/ul-mds/pprl/filterspec"
	"github.com/ul-mds/pprl/hardener"
	"github.com/ul-mds/pprl/hashscheme"
	"github.com/ul-mds/pprl/pprlerr"
	"github.com/ul-mds/pprl/rng"
	"github.com/ul-mds/pprl/transform"
)

// Entity is one masking input: an opaque identifier plus its attribute
// values (already transformed — see transform.Pipeline for the upstream
// value-to-value stage).
type Entity struct {
	ID         string
	Attributes map[string]string
}

// BitVectorEntity is one masking output.
type BitVectorEntity struct {
	ID     string
	Vector *bitvec.BitVector
}

// Config is a masking job's full configuration: which attributes to
// tokenize and how, the shared hash configuration, the filter layout, the
// optional entity-level salt, and the hardener chain applied to every
// output vector.
type Config struct {
	Attributes []filterspec.AttributeConfig
	Hash       filterspec.HashConfig
	Filter     filterspec.FilterSpec
	Salt       *filterspec.Salt
	Hardeners  hardener.Chain
	// PerEntityError, when true, causes a failing entity to be skipped
	// (recorded in MaskBatch's returned errors) rather than aborting the
	// whole batch (spec §4.4's error model).
	PerEntityError bool
}

// Validate checks the whole configuration once, before any entity is
// processed — attribute well-formedness, hash/filter validity, and that
// the filter's required attribute set matches the configured attributes
// (spec §3's RBF/CLK-RBF invariant).
func (c Config) Validate() error {
	if len(c.Attributes) == 0 {
		return pprlerr.NewConfigError("mask: at least one attribute is required")
	}
	configured := make(map[string]struct{}, len(c.Attributes))
	for _, a := range c.Attributes {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := configured[a.Name]; dup {
			return pprlerr.NewConfigError("mask: attribute %q configured twice", a.Name)
		}
		configured[a.Name] = struct{}{}
	}

	if err := c.Hash.Validate(); err != nil {
		return err
	}
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	if err := c.Salt.Validate(); err != nil {
		return err
	}
	if err := c.Hardeners.Validate(); err != nil {
		return err
	}

	for _, name := range filterspec.RequiredAttributeNames(c.Filter) {
		if _, ok := configured[name]; !ok {
			return pprlerr.NewConfigError("mask: filter references attribute %q not present in attribute configuration", name)
		}
	}

	switch c.Filter.Type {
	case filterspec.CLK:
		// CLK shares one k across all attributes; nothing further to check.
	case filterspec.RBF:
		if len(c.Filter.RBF.Attributes) != len(c.Attributes) {
			return pprlerr.NewConfigError("mask: rbf requires every configured attribute to have a sub-filter")
		}
	case filterspec.CLKRBF:
		if len(c.Filter.CLKRBF.Attributes) != len(c.Attributes) {
			return pprlerr.NewConfigError("mask: clkrbf requires every configured attribute to have a weight")
		}
	}

	return nil
}

// EntityFailure records one entity's masking failure under the
// PerEntityError policy.
type EntityFailure struct {
	EntityID string
	Err      error
}

// MaskBatch masks every entity in entities under cfg, partitioning work
// across workers the same way similarity.Match partitions its domain
// (0 -> 1 worker, negative -> auto-detect, positive -> literal).
//
// When cfg.PerEntityError is false (the default), the first entity failure
// aborts the whole batch. When true, failing entities are omitted from the
// returned slice and reported in the second return value instead.
func MaskBatch(cfg Config, entities []Entity, workers int) ([]BitVectorEntity, []EntityFailure, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := workerCount(workers)
	if n > len(entities) {
		n = len(entities)
	}
	if n <= 1 || len(entities) == 0 {
		return maskRange(cfg, entities)
	}

	chunk := (len(entities) + n - 1) / n
	results := make([][]BitVectorEntity, n)
	failures := make([][]EntityFailure, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(entities) {
			end = len(entities)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			results[w], failures[w], errs[w] = maskRange(cfg, entities[start:end])
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	var out []BitVectorEntity
	var fails []EntityFailure
	for i := range results {
		out = append(out, results[i]...)
		fails = append(fails, failures[i]...)
	}
	return out, fails, nil
}

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

// maskRange masks one contiguous slice of entities sequentially.
func maskRange(cfg Config, entities []Entity) ([]BitVectorEntity, []EntityFailure, error) {
	var out []BitVectorEntity
	var fails []EntityFailure
	for _, e := range entities {
		v, err := maskOne(cfg, e)
		if err != nil {
			if cfg.PerEntityError {
				fails = append(fails, EntityFailure{EntityID: e.ID, Err: err})
				continue
			}
			return nil, nil, err
		}
		out = append(out, BitVectorEntity{ID: e.ID, Vector: v})
	}
	return out, fails, nil
}

func maskOne(cfg Config, e Entity) (*bitvec.BitVector, error) {
	salt, err := cfg.Salt.Resolve(e.Attributes)
	if err != nil {
		return nil, pprlerr.WrapConfigError(err, "entity %q", e.ID)
	}

	var vector *bitvec.BitVector
	switch cfg.Filter.Type {
	case filterspec.CLK:
		vector, err = maskCLK(cfg, e, salt)
	case filterspec.RBF:
		vector, err = maskRBF(cfg, e, salt)
	case filterspec.CLKRBF:
		vector, err = maskCLKRBF(cfg, e, salt)
	default:
		err = pprlerr.NewConfigError("mask: unsupported filter type %q", cfg.Filter.Type)
	}
	if err != nil {
		return nil, err
	}

	if len(cfg.Hardeners) > 0 {
		vector, err = cfg.Hardeners.Apply(vector)
		if err != nil {
			return nil, &pprlerr.InputError{EntityID: e.ID, Msg: "hardener chain failed", Err: err}
		}
	}
	return vector, nil
}

// setTokenBits digests token (with salt concatenated, if any), derives
// positions under scheme, and sets them in v.
func setTokenBits(v *bitvec.BitVector, cfg filterspec.HashConfig, scheme hashscheme.Scheme, salt, token string) error {
	data := []byte(token)
	if salt != "" {
		data = append([]byte(salt), data...)
	}
	stream, err := cfg.Digest.Stream(data)
	if err != nil {
		return err
	}
	positions, err := scheme.Positions(stream, v.Len())
	if err != nil {
		return err
	}
	for _, p := range positions {
		v.Set(p)
	}
	return nil
}

func tokenizeAttribute(ac filterspec.AttributeConfig, e Entity) []transform.Token {
	value, ok := e.Attributes[ac.Name]
	if !ok || value == "" {
		return nil
	}
	return transform.QGrams(ac.Name, value, ac.Q, ac.Pad, ac.PrependAttributeName)
}

func maskCLK(cfg Config, e Entity, salt string) (*bitvec.BitVector, error) {
	layout := cfg.Filter.CLK
	v := bitvec.New(layout.Size)
	scheme := hashscheme.Scheme{Strategy: cfg.Hash.Strategy, K: layout.K}

	for _, ac := range cfg.Attributes {
		for _, tok := range tokenizeAttribute(ac, e) {
			if err := setTokenBits(v, cfg.Hash, scheme, salt, tok.String()); err != nil {
				return nil, &pprlerr.InputError{EntityID: e.ID, Attribute: ac.Name, Msg: "hashing token failed", Err: err}
			}
		}
	}
	return v, nil
}

func maskRBF(cfg Config, e Entity, salt string) (*bitvec.BitVector, error) {
	layout := cfg.Filter.RBF

	subFilters := make(map[string]*bitvec.BitVector, len(layout.AttributeOrder))
	for _, ac := range cfg.Attributes {
		rbfAttr := layout.Attributes[ac.Name]
		sub := bitvec.New(rbfAttr.SubFilterSize)
		scheme := hashscheme.Scheme{Strategy: cfg.Hash.Strategy, K: rbfAttr.K}

		for _, tok := range tokenizeAttribute(ac, e) {
			if err := setTokenBits(sub, cfg.Hash, scheme, salt, tok.String()); err != nil {
				return nil, &pprlerr.InputError{EntityID: e.ID, Attribute: ac.Name, Msg: "hashing token failed", Err: err}
			}
		}
		subFilters[ac.Name] = sub
	}

	var concatenated *bitvec.BitVector
	for _, name := range layout.AttributeOrder {
		if concatenated == nil {
			concatenated = subFilters[name]
			continue
		}
		concatenated = concatenated.Concat(subFilters[name])
	}

	// The sampling permutation depends only on layout.PermutationSeed, so
	// every entity in a masking job gets the same one (it is recomputed
	// here for each entity, with identical result): spec §9 leaves this
	// open, and a job-wide permutation is what lets every entity's output
	// occupy the same bit positions for the same source sub-filter slot,
	// which is the property a downstream matcher relies on.
	r := rng.New(layout.PermutationSeed)
	perm := rng.Permutation(r, concatenated.Len())

	out := bitvec.New(layout.OutputSize)
	for i := 0; i < layout.OutputSize; i++ {
		out.SetTo(i, concatenated.Test(perm[i]))
	}
	return out, nil
}

func maskCLKRBF(cfg Config, e Entity, salt string) (*bitvec.BitVector, error) {
	layout := cfg.Filter.CLKRBF
	v := bitvec.New(layout.BaseSize)

	for _, ac := range cfg.Attributes {
		k, err := layout.EffectiveK(ac.Name)
		if err != nil {
			return nil, pprlerr.WrapConfigError(err, "entity %q", e.ID)
		}
		scheme := hashscheme.Scheme{Strategy: cfg.Hash.Strategy, K: k}

		for _, tok := range tokenizeAttribute(ac, e) {
			if err := setTokenBits(v, cfg.Hash, scheme, salt, tok.String()); err != nil {
				return nil, &pprlerr.InputError{EntityID: e.ID, Attribute: ac.Name, Msg: "hashing token failed", Err: err}
			}
		}
	}
	return v, nil
}

// SortedAttributeNames returns cfg's configured attribute names in
// deterministic (sorted) order, useful for callers building RBF's
// AttributeOrder from a Config without depending on map iteration order.
func SortedAttributeNames(cfg Config) []string {
	names := make([]string, 0, len(cfg.Attributes))
	for _, a := range cfg.Attributes {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}
