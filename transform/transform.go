// Package transform implements the value-to-value transform pipeline of
// spec §4.3: normalization, character filtering, mapping, numeric and
// date-time formatting, and phonetic coding, followed by q-gram
// tokenization. Transforms are dispatched from one tagged sum, the way
// internal/query/filter.go's Condition dispatches on a closed operator set.
package transform

import (
	"github.com/ul-mds/pprl/pprlerr"
)

// Kind names one of the supported string-level transforms.
type Kind string

const (
	KindNormalize       Kind = "normalize"
	KindCharacterFilter Kind = "character_filter"
	KindMapping         Kind = "mapping"
	KindNumber          Kind = "number"
	KindDateTime        Kind = "date_time"
	KindPhoneticCode    Kind = "phonetic_code"
)

// Transform is a single tagged-union pipeline step. Exactly the fields
// relevant to Kind are consulted.
type Transform struct {
	Kind Kind

	// character_filter
	Chars string

	// mapping
	MappingTable map[string]string
	Default      *string
	Inline       bool

	// number
	Decimals int

	// date_time
	InFormat  string
	OutFormat string

	// phonetic_code
	Phonetic Algorithm
}

// Validate checks a single transform's parameters are well-formed.
func (t Transform) Validate() error {
	switch t.Kind {
	case KindNormalize:
		return nil
	case KindCharacterFilter:
		if t.Chars == "" {
			return pprlerr.NewConfigError("character_filter: chars must not be empty")
		}
		return nil
	case KindMapping:
		if !t.Inline && len(t.MappingTable) == 0 && t.Default == nil {
			return pprlerr.NewConfigError("mapping: table must be non-empty unless a default is set")
		}
		return nil
	case KindNumber:
		if t.Decimals < 0 {
			return pprlerr.NewConfigError("number: decimals must be >= 0")
		}
		return nil
	case KindDateTime:
		if t.InFormat == "" || t.OutFormat == "" {
			return pprlerr.NewConfigError("date_time: in_fmt and out_fmt are required")
		}
		return nil
	case KindPhoneticCode:
		return t.Phonetic.Validate()
	default:
		return pprlerr.NewConfigError("unsupported transform kind %q", t.Kind)
	}
}

// Apply runs the transform on a value, returning the transformed value.
func (t Transform) Apply(value string) (string, error) {
	switch t.Kind {
	case KindNormalize:
		return Normalize(value), nil
	case KindCharacterFilter:
		return CharacterFilter(value, t.Chars), nil
	case KindMapping:
		return ApplyMapping(value, t.MappingTable, t.Default, t.Inline)
	case KindNumber:
		return FormatNumber(value, t.Decimals)
	case KindDateTime:
		return ReformatDateTime(value, t.InFormat, t.OutFormat)
	case KindPhoneticCode:
		return Phoneticize(value, t.Phonetic)
	default:
		return "", pprlerr.NewConfigError("unsupported transform kind %q", t.Kind)
	}
}

// EmptyValueHandling controls how an empty string after pre-transforms is
// treated.
type EmptyValueHandling string

const (
	EmptyIgnore EmptyValueHandling = "ignore"
	EmptySkip   EmptyValueHandling = "skip"
	EmptyError  EmptyValueHandling = "error"
)

// Pipeline composes global "before" transforms, a per-attribute transform
// list, and global "after" transforms, applied in that order (spec §4.3).
type Pipeline struct {
	Before             []Transform
	PerAttribute       map[string][]Transform
	After              []Transform
	EmptyValueHandling EmptyValueHandling
}

// Validate checks every configured transform once, before any entity is
// processed.
func (p Pipeline) Validate() error {
	for _, t := range p.Before {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for attr, ts := range p.PerAttribute {
		for _, t := range ts {
			if err := t.Validate(); err != nil {
				return pprlerr.WrapConfigError(err, "attribute %q", attr)
			}
		}
	}
	for _, t := range p.After {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	switch p.EmptyValueHandling {
	case "", EmptyIgnore, EmptySkip, EmptyError:
	default:
		return pprlerr.NewConfigError("unsupported empty value handling %q", p.EmptyValueHandling)
	}
	return nil
}

// Result carries the outcome of running Pipeline.Apply for one attribute.
type Result struct {
	Value string
	// Skip reports that the attribute should be dropped entirely (the
	// EmptySkip policy fired on an empty value after pre-transforms).
	Skip bool
}

// Apply runs the pipeline on a single attribute's value, for the given
// entity (used only to annotate errors) and attribute name (used to select
// the per-attribute transform list and, via EmptyValueHandling, to report
// which attribute went empty).
func (p Pipeline) Apply(entityID, attribute, value string) (Result, error) {
	v := value
	for _, t := range p.Before {
		nv, err := t.Apply(v)
		if err != nil {
			return Result{}, wrapInputErr(entityID, attribute, err)
		}
		v = nv
	}

	if v == "" {
		res, done, err := p.handleEmpty(entityID, attribute)
		if done {
			return res, err
		}
	}

	for _, t := range p.PerAttribute[attribute] {
		nv, err := t.Apply(v)
		if err != nil {
			return Result{}, wrapInputErr(entityID, attribute, err)
		}
		v = nv
	}

	for _, t := range p.After {
		nv, err := t.Apply(v)
		if err != nil {
			return Result{}, wrapInputErr(entityID, attribute, err)
		}
		v = nv
	}

	if v == "" {
		res, done, err := p.handleEmpty(entityID, attribute)
		if done {
			return res, err
		}
	}

	return Result{Value: v}, nil
}

// handleEmpty applies the EmptyValueHandling policy to an empty value.
// done reports whether the caller should return immediately with (res, err).
func (p Pipeline) handleEmpty(entityID, attribute string) (Result, bool, error) {
	switch p.EmptyValueHandling {
	case EmptySkip:
		return Result{Skip: true}, true, nil
	case EmptyError:
		return Result{}, true, &pprlerr.EmptyValueError{EntityID: entityID, Attribute: attribute}
	default: // EmptyIgnore or unset
		return Result{}, false, nil
	}
}

func wrapInputErr(entityID, attribute string, err error) error {
	if _, ok := err.(*pprlerr.ConfigError); ok {
		return err
	}
	return &pprlerr.InputError{EntityID: entityID, Attribute: attribute, Msg: "transform failed", Err: err}
}
