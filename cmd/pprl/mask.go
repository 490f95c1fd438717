package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ul-mds/pprl/filterspec"
	"github.com/ul-mds/pprl/internal/config"
	"github.com/ul-mds/pprl/mask"
	"github.com/ul-mds/pprl/transform"
)

var (
	maskConfigPath string
	maskInputPath  string
	maskWorkers    int
	maskPerEntity  bool
)

func init() {
	for _, c := range []*cobra.Command{maskCLKCmd, maskRBFCmd, maskCLKRBFCmd} {
		c.Flags().StringVarP(&maskConfigPath, "config", "c", "", "path to a masking job config (YAML/JSON)")
		c.Flags().StringVarP(&maskInputPath, "input", "i", "", "entities JSON file to read (.lz4 for compressed input; default stdin)")
		c.Flags().IntVarP(&maskWorkers, "workers", "w", 0, "worker count: 0 = single goroutine, <0 = auto-detect")
		c.Flags().BoolVar(&maskPerEntity, "per-entity-error", false, "skip failing entities instead of aborting the batch")
		_ = c.MarkFlagRequired("config")
		maskCmd.AddCommand(c)
	}
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Mask entities read from stdin into bit-vector encodings",
}

var maskCLKCmd = &cobra.Command{
	Use:   "clk",
	Short: "Mask using a Cryptographic Longterm Key (single shared filter)",
	Run:   runMask(filterspec.CLK),
}

var maskRBFCmd = &cobra.Command{
	Use:   "rbf",
	Short: "Mask using a Record-level Bloom Filter (per-attribute sub-filters)",
	Run:   runMask(filterspec.RBF),
}

var maskCLKRBFCmd = &cobra.Command{
	Use:   "clkrbf",
	Short: "Mask using a weighted CLK-RBF hybrid filter",
	Run:   runMask(filterspec.CLKRBF),
}

func runMask(want filterspec.FilterType) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		job, err := config.LoadMaskJob(maskConfigPath)
		if err != nil {
			fail(err)
		}
		if job.Filter.Type != want {
			fail(errMismatchedFilterType(want, job.Filter.Type))
		}

		cfg, pipeline, err := job.ToMaskConfig()
		if err != nil {
			fail(err)
		}
		cfg.PerEntityError = maskPerEntity
		if err := pipeline.Validate(); err != nil {
			fail(err)
		}

		in, err := openInput(maskInputPath)
		if err != nil {
			fail(err)
		}
		defer in.Close()

		wireEntities, err := readEntities(in)
		if err != nil {
			fail(err)
		}

		transformIn := make([]transform.EntityAttributes, len(wireEntities))
		for i, e := range wireEntities {
			transformIn[i] = transform.EntityAttributes{ID: e.ID, Attributes: e.Attributes}
		}

		transformed, transformFailures, err := pipeline.ApplyBatch(transformIn, maskPerEntity)
		if err != nil {
			fail(err)
		}

		entities := make([]mask.Entity, len(transformed))
		for i, e := range transformed {
			entities[i] = mask.Entity{ID: e.ID, Attributes: e.Attributes}
		}

		out, maskFailures, err := mask.MaskBatch(cfg, entities, maskWorkers)
		if err != nil {
			fail(err)
		}

		type result struct {
			ID     string `json:"id"`
			Vector string `json:"vector"`
			Length int    `json:"length"`
		}
		type failure struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		}

		resp := struct {
			Entities []result  `json:"entities"`
			Failures []failure `json:"failures,omitempty"`
		}{}

		for _, e := range out {
			resp.Entities = append(resp.Entities, result{ID: e.ID, Vector: e.Vector.EncodeBase64(), Length: e.Vector.Len()})
		}
		for _, f := range transformFailures {
			resp.Failures = append(resp.Failures, failure{ID: f.EntityID, Error: f.Err.Error()})
		}
		for _, f := range maskFailures {
			resp.Failures = append(resp.Failures, failure{ID: f.EntityID, Error: f.Err.Error()})
		}

		if err := writeJSON(os.Stdout, resp); err != nil {
			fail(err)
		}
	}
}

type mismatchedFilterTypeError struct {
	want, got filterspec.FilterType
}

func (e *mismatchedFilterTypeError) Error() string {
	return "config specifies filter type " + string(e.got) + ", but `mask " + string(e.want) + "` was invoked"
}

func errMismatchedFilterType(want, got filterspec.FilterType) error {
	return &mismatchedFilterTypeError{want: want, got: got}
}
