package config

import (
	"path/filepath"
	"testing"

	"github.com/ul-mds/pprl/filterspec"
)

func sampleJob() MaskJob {
	return MaskJob{
		Attributes: []AttributeSpec{
			{Name: "firstname", Q: 2, Pad: "_"},
		},
		Filter: filterspec.FilterSpec{
			Type: filterspec.CLK,
			CLK:  &filterspec.CLKLayout{Size: 512, K: 5},
		},
	}
}

func TestLoadMaskJobYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := Save(path, sampleJob()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadMaskJob(path)
	if err != nil {
		t.Fatalf("LoadMaskJob: %v", err)
	}
	if len(got.Attributes) != 1 || got.Attributes[0].Name != "firstname" {
		t.Fatalf("unexpected attributes: %+v", got.Attributes)
	}
}

func TestLoadMaskJobJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	if err := Save(path, sampleJob()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadMaskJob(path)
	if err != nil {
		t.Fatalf("LoadMaskJob: %v", err)
	}
	if got.Filter.Type != filterspec.CLK || got.Filter.CLK.Size != 512 {
		t.Fatalf("unexpected filter: %+v", got.Filter)
	}
}

func TestToMaskConfigRejectsMultiCharPad(t *testing.T) {
	job := sampleJob()
	job.Attributes[0].Pad = "__"

	if _, _, err := job.ToMaskConfig(); err == nil {
		t.Fatalf("expected error for multi-character pad")
	}
}

func TestToMaskConfigExpandsAttributesAndPipeline(t *testing.T) {
	job := sampleJob()
	cfg, pipeline, err := job.ToMaskConfig()
	if err != nil {
		t.Fatalf("ToMaskConfig: %v", err)
	}
	if len(cfg.Attributes) != 1 || cfg.Attributes[0].Pad != '_' {
		t.Fatalf("unexpected mask config attributes: %+v", cfg.Attributes)
	}
	if len(pipeline.PerAttribute) != 0 {
		t.Fatalf("expected no per-attribute transforms for sampleJob, got %v", pipeline.PerAttribute)
	}
}
