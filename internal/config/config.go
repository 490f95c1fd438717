// Package config loads masking-job configuration files for cmd/pprl.
//
// Grounded on internal/schema/manager.go's Load/Save pair: a single
// struct mirrors the on-disk document exactly, read in whole and
// validated once before use. schema.Schema derives its sidecar path from
// the CSV file it describes; a masking job config has no such implicit
// location, so Load takes the config path directly instead.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ul-mds/pprl/filterspec"
	"github.com/ul-mds/pprl/hardener"
	"github.com/ul-mds/pprl/mask"
	"github.com/ul-mds/pprl/pprlerr"
	"github.com/ul-mds/pprl/transform"
)

// MaskJob is the on-disk shape of a `pprl mask` request: the attribute
// pipeline, the hash/filter layout, optional salt and hardener chain.
// Field names match mask.Config's so that the document is a direct,
// legible rendering of the config the core actually consumes.
type MaskJob struct {
	Attributes []AttributeSpec        `yaml:"attributes" json:"attributes"`
	Hash       filterspec.HashConfig  `yaml:"hash" json:"hash"`
	Filter     filterspec.FilterSpec  `yaml:"filter" json:"filter"`
	Salt       *filterspec.Salt       `yaml:"salt,omitempty" json:"salt,omitempty"`
	Hardeners  hardener.Chain         `yaml:"hardeners,omitempty" json:"hardeners,omitempty"`
}

// AttributeSpec is one attribute's tokenization config plus the
// transform pipeline applied to it before tokenization — the document
// form folds transform.Pipeline's PerAttribute entry and
// filterspec.AttributeConfig together, since in a job file they are
// always configured side by side for the same attribute name.
type AttributeSpec struct {
	Name                 string               `yaml:"name" json:"name"`
	Q                    int                  `yaml:"q" json:"q"`
	Pad                  string               `yaml:"pad" json:"pad"`
	PrependAttributeName bool                 `yaml:"prepend_attribute_name,omitempty" json:"prepend_attribute_name,omitempty"`
	Transforms           []transform.Transform `yaml:"transforms,omitempty" json:"transforms,omitempty"`
}

// ToMaskConfig converts the document form into mask.Config, expanding
// each AttributeSpec into a filterspec.AttributeConfig and collecting
// the per-attribute transform lists into a transform.Pipeline.
func (j MaskJob) ToMaskConfig() (mask.Config, transform.Pipeline, error) {
	attrs := make([]filterspec.AttributeConfig, len(j.Attributes))
	perAttribute := make(map[string][]transform.Transform, len(j.Attributes))

	for i, a := range j.Attributes {
		pad := []rune(a.Pad)
		if len(pad) != 1 {
			return mask.Config{}, transform.Pipeline{}, pprlerr.NewConfigError(
				"attribute %q: pad must be exactly one character, got %q", a.Name, a.Pad)
		}
		attrs[i] = filterspec.AttributeConfig{
			Name:                 a.Name,
			Q:                    a.Q,
			Pad:                  pad[0],
			PrependAttributeName: a.PrependAttributeName,
		}
		if len(a.Transforms) > 0 {
			perAttribute[a.Name] = a.Transforms
		}
	}

	cfg := mask.Config{
		Attributes: attrs,
		Hash:       j.Hash,
		Filter:     j.Filter,
		Salt:       j.Salt,
		Hardeners:  j.Hardeners,
	}
	pipeline := transform.Pipeline{PerAttribute: perAttribute}

	return cfg, pipeline, nil
}

// LoadMaskJob reads a masking job config from path. The format is chosen
// by file extension: .json for JSON, anything else (.yaml/.yml or no
// extension) for YAML.
func LoadMaskJob(path string) (MaskJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MaskJob{}, pprlerr.WrapConfigError(err, "read config %s", path)
	}

	var job MaskJob
	if isJSON(path) {
		if err := json.Unmarshal(data, &job); err != nil {
			return MaskJob{}, pprlerr.WrapConfigError(err, "parse JSON config %s", path)
		}
	} else {
		if err := yaml.Unmarshal(data, &job); err != nil {
			return MaskJob{}, pprlerr.WrapConfigError(err, "parse YAML config %s", path)
		}
	}

	return job, nil
}

// Save writes job back to path in the same format LoadMaskJob would
// infer for it, the way schema.Schema.Save round-trips its sidecar file.
func Save(path string, job MaskJob) error {
	var data []byte
	var err error

	if isJSON(path) {
		data, err = json.MarshalIndent(job, "", "  ")
	} else {
		data, err = yaml.Marshal(job)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pprlerr.WrapConfigError(err, "write config %s", path)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
