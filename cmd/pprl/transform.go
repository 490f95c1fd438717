package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ul-mds/pprl/internal/config"
	"github.com/ul-mds/pprl/transform"
)

var (
	transformConfigPath string
	transformInputPath  string
	transformPerEntity  bool
)

func init() {
	transformCmd.Flags().StringVarP(&transformConfigPath, "config", "c", "", "path to a transform pipeline config (YAML/JSON)")
	transformCmd.Flags().StringVarP(&transformInputPath, "input", "i", "", "entities JSON file to read (.lz4 for compressed input; default stdin)")
	transformCmd.Flags().BoolVar(&transformPerEntity, "per-entity-error", false, "skip failing entities instead of aborting the batch")
	_ = transformCmd.MarkFlagRequired("config")
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Run the normalization/transform pipeline over entities read from stdin",
	Run: func(cmd *cobra.Command, args []string) {
		job, err := config.LoadMaskJob(transformConfigPath)
		if err != nil {
			fail(err)
		}
		_, pipeline, err := job.ToMaskConfig()
		if err != nil {
			fail(err)
		}
		if err := pipeline.Validate(); err != nil {
			fail(err)
		}

		in, err := openInput(transformInputPath)
		if err != nil {
			fail(err)
		}
		defer in.Close()

		wireEntities, err := readEntities(in)
		if err != nil {
			fail(err)
		}

		entities := make([]transform.EntityAttributes, len(wireEntities))
		for i, e := range wireEntities {
			entities[i] = transform.EntityAttributes{ID: e.ID, Attributes: e.Attributes}
		}

		transformed, failures, err := pipeline.ApplyBatch(entities, transformPerEntity)
		if err != nil {
			fail(err)
		}

		out := make([]wireEntity, len(transformed))
		for i, e := range transformed {
			out[i] = wireEntity{ID: e.ID, Attributes: e.Attributes}
		}

		type failure struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		}
		failWire := make([]failure, len(failures))
		for i, f := range failures {
			failWire[i] = failure{ID: f.EntityID, Error: f.Err.Error()}
		}

		resp := struct {
			Entities []wireEntity `json:"entities"`
			Failures []failure    `json:"failures,omitempty"`
		}{Entities: out, Failures: failWire}

		if err := writeJSON(os.Stdout, resp); err != nil {
			fail(err)
		}
	},
}
