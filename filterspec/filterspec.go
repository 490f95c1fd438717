// Package filterspec declares the configuration types for a masking job —
// the hash configuration, the filter layout (CLK / RBF / CLK-RBF), the
// entity-level salt, and per-attribute tokenization settings — and
// validates them once before any
// entity is processed (spec §4.4's error model), the way schema.Schema and
// indexer.IndexerConfig validate their column lists up front before a scan
// begins.
package filterspec

import (
	"github.com/ul-mds/pprl/digest"
	"github.com/ul-mds/pprl/hashscheme"
	"github.com/ul-mds/pprl/pprlerr"
)

// HashConfig names the digest algorithms and hash-position scheme a masking
// job uses. The per-token bit count (k) is not part of HashConfig: it
// varies by filter type and, for RBF/CLK-RBF, by attribute — see FilterSpec.
type HashConfig struct {
	Digest   digest.Config
	Strategy hashscheme.Strategy
}

func (h HashConfig) Validate() error {
	if err := h.Digest.Validate(); err != nil {
		return pprlerr.WrapConfigError(err, "hash config")
	}
	switch h.Strategy {
	case hashscheme.DoubleHash, hashscheme.EnhancedDoubleHash, hashscheme.TripleHash, hashscheme.RandomHash:
		return nil
	default:
		return pprlerr.NewConfigError("hash config: unsupported strategy %q", h.Strategy)
	}
}

// Salt configures an entity-level salt concatenated with every token before
// digesting. Exactly one of Value or Attribute must be set.
type Salt struct {
	Value     *string
	Attribute *string
}

func (s *Salt) Validate() error {
	if s == nil {
		return nil
	}
	if (s.Value == nil) == (s.Attribute == nil) {
		return pprlerr.NewConfigError("salt: exactly one of value or attribute must be set")
	}
	return nil
}

// Resolve returns the salt string to use for one entity, given that
// entity's attribute map.
func (s *Salt) Resolve(attributes map[string]string) (string, error) {
	if s == nil {
		return "", nil
	}
	if s.Value != nil {
		return *s.Value, nil
	}
	v, ok := attributes[*s.Attribute]
	if !ok {
		return "", pprlerr.NewConfigError("salt: referenced attribute %q not present on entity", *s.Attribute)
	}
	return v, nil
}

// FilterType names one of the three supported filter layouts.
type FilterType string

const (
	CLK    FilterType = "clk"
	RBF    FilterType = "rbf"
	CLKRBF FilterType = "clkrbf"
)

// CLKLayout is the uniform filter: a single shared size and k, applied to
// every attribute.
type CLKLayout struct {
	Size int
	K    int
}

func (c CLKLayout) Validate() error {
	if c.Size <= 0 {
		return pprlerr.NewConfigError("clk: size must be > 0, got %d", c.Size)
	}
	if c.K <= 0 {
		return pprlerr.NewConfigError("clk: k must be > 0, got %d", c.K)
	}
	return nil
}

// RBFAttribute is one attribute's sub-filter configuration in an RBF layout.
type RBFAttribute struct {
	SubFilterSize int
	K             int
}

// RBFLayout builds one sub-filter per attribute, concatenates them in
// declared order, then samples OutputSize bits using a Fisher-Yates
// permutation seeded by PermutationSeed.
type RBFLayout struct {
	Attributes      map[string]RBFAttribute
	AttributeOrder  []string
	OutputSize      int
	PermutationSeed uint64
}

func (r RBFLayout) Validate() error {
	if len(r.Attributes) == 0 {
		return pprlerr.NewConfigError("rbf: at least one weighted attribute is required")
	}
	if len(r.AttributeOrder) != len(r.Attributes) {
		return pprlerr.NewConfigError("rbf: attribute_order must list exactly the configured attributes")
	}
	seen := make(map[string]struct{}, len(r.AttributeOrder))
	total := 0
	for _, name := range r.AttributeOrder {
		a, ok := r.Attributes[name]
		if !ok {
			return pprlerr.NewConfigError("rbf: attribute_order references unconfigured attribute %q", name)
		}
		if _, dup := seen[name]; dup {
			return pprlerr.NewConfigError("rbf: attribute %q listed twice in attribute_order", name)
		}
		seen[name] = struct{}{}
		if a.SubFilterSize <= 0 {
			return pprlerr.NewConfigError("rbf: attribute %q: sub_filter_size must be > 0", name)
		}
		if a.K <= 0 {
			return pprlerr.NewConfigError("rbf: attribute %q: k must be > 0", name)
		}
		total += a.SubFilterSize
	}
	if r.OutputSize <= 0 {
		return pprlerr.NewConfigError("rbf: output_size must be > 0, got %d", r.OutputSize)
	}
	if r.OutputSize > total {
		return pprlerr.NewConfigError("rbf: output_size %d exceeds total sub-filter size %d", r.OutputSize, total)
	}
	return nil
}

// TotalSize returns the length of the concatenated sub-filters, before
// sampling down to OutputSize.
func (r RBFLayout) TotalSize() int {
	total := 0
	for _, name := range r.AttributeOrder {
		total += r.Attributes[name].SubFilterSize
	}
	return total
}

// CLKRBFAttribute carries one attribute's weight, used to derive its
// effective per-token bit count within the shared filter.
type CLKRBFAttribute struct {
	Weight float64
}

// CLKRBFLayout is a single shared filter whose per-attribute effective k is
// scaled by attribute weight (spec §4.4, §9 open question — resolved in
// EffectiveK below).
type CLKRBFLayout struct {
	BaseSize   int
	BaseK      int
	Attributes map[string]CLKRBFAttribute
}

func (c CLKRBFLayout) Validate() error {
	if c.BaseSize <= 0 {
		return pprlerr.NewConfigError("clkrbf: base_size must be > 0, got %d", c.BaseSize)
	}
	if c.BaseK <= 0 {
		return pprlerr.NewConfigError("clkrbf: base_k must be > 0, got %d", c.BaseK)
	}
	if len(c.Attributes) == 0 {
		return pprlerr.NewConfigError("clkrbf: at least one weighted attribute is required")
	}
	maxWeight := 0.0
	for name, a := range c.Attributes {
		if a.Weight <= 0 {
			return pprlerr.NewConfigError("clkrbf: attribute %q: weight must be > 0", name)
		}
		if a.Weight > maxWeight {
			maxWeight = a.Weight
		}
	}
	return nil
}

// EffectiveK resolves spec §9's open question on the attribute-weight-to-k
// formula: k_a = round(base_k * weight_a / max_weight), the normalization
// the spec itself offers as an example. No reference implementation in the
// retrieved pack pins a different formula, and bit-for-bit wire
// compatibility with an external, unspecified system is unattainable
// regardless of which reasonable formula is chosen — so this one is
// adopted and documented rather than guessed silently per-call.
func (c CLKRBFLayout) EffectiveK(attribute string) (int, error) {
	a, ok := c.Attributes[attribute]
	if !ok {
		return 0, pprlerr.NewConfigError("clkrbf: attribute %q has no configured weight", attribute)
	}
	maxWeight := 0.0
	for _, other := range c.Attributes {
		if other.Weight > maxWeight {
			maxWeight = other.Weight
		}
	}
	if maxWeight == 0 {
		return 0, pprlerr.NewConfigError("clkrbf: all attribute weights are zero")
	}
	k := int(roundHalfAwayFromZero(float64(c.BaseK) * a.Weight / maxWeight))
	if k <= 0 {
		k = 1
	}
	return k, nil
}

func roundHalfAwayFromZero(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}

// FilterSpec is the tagged union of the three supported filter layouts.
// Exactly one of CLK, RBF, CLKRBF is populated, matching Type.
type FilterSpec struct {
	Type   FilterType
	CLK    *CLKLayout
	RBF    *RBFLayout
	CLKRBF *CLKRBFLayout
}

// Validate checks the filter spec is internally consistent: the payload
// matching Type is present, the others are absent, and the payload itself
// validates.
func (f FilterSpec) Validate() error {
	switch f.Type {
	case CLK:
		if f.CLK == nil || f.RBF != nil || f.CLKRBF != nil {
			return pprlerr.NewConfigError("filter spec: type %q requires exactly the clk payload", f.Type)
		}
		return f.CLK.Validate()
	case RBF:
		if f.RBF == nil || f.CLK != nil || f.CLKRBF != nil {
			return pprlerr.NewConfigError("filter spec: type %q requires exactly the rbf payload", f.Type)
		}
		return f.RBF.Validate()
	case CLKRBF:
		if f.CLKRBF == nil || f.CLK != nil || f.RBF != nil {
			return pprlerr.NewConfigError("filter spec: type %q requires exactly the clkrbf payload", f.Type)
		}
		return f.CLKRBF.Validate()
	default:
		return pprlerr.NewConfigError("filter spec: unsupported type %q", f.Type)
	}
}

// AttributeConfig associates one entity attribute with its token-padding
// width and optional q-gram attribute-name prefixing. Salt, per spec §4.4,
// is configured once per masking job ("the entity-level salt"), not per
// attribute — see mask.Config.Salt.
type AttributeConfig struct {
	Name                 string
	Q                    int
	Pad                  rune
	PrependAttributeName bool
}

func (a AttributeConfig) Validate() error {
	if a.Name == "" {
		return pprlerr.NewConfigError("attribute config: name must not be empty")
	}
	if a.Q <= 0 {
		return pprlerr.NewConfigError("attribute %q: q must be > 0", a.Name)
	}
	if a.Pad == 0 {
		return pprlerr.NewConfigError("attribute %q: pad must be set", a.Name)
	}
	return nil
}

// RequiredAttributeNames reports every attribute name the filter layout
// requires to be present in AttributeConfigs — used to check the weighting
// configuration's attribute set against the configured attributes before
// masking begins (spec §3's RBF/CLK-RBF invariant).
func RequiredAttributeNames(f FilterSpec) []string {
	switch f.Type {
	case RBF:
		return f.RBF.AttributeOrder
	case CLKRBF:
		names := make([]string, 0, len(f.CLKRBF.Attributes))
		for name := range f.CLKRBF.Attributes {
			names = append(names, name)
		}
		return names
	default:
		return nil
	}
}
