package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ul-mds/pprl/internal/config"
	"github.com/ul-mds/pprl/stats"
)

var (
	statsConfigPath string
	statsInputPath  string
)

func init() {
	statsCmd.Flags().StringVarP(&statsConfigPath, "config", "c", "", "path to a masking job config (YAML/JSON) naming the attributes to profile")
	statsCmd.Flags().StringVarP(&statsInputPath, "input", "i", "", "entities JSON file to read (.lz4 for compressed input; default stdin)")
	_ = statsCmd.MarkFlagRequired("config")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute per-attribute population statistics (average tokens, n-gram entropy) used to derive RBF/CLK-RBF weights",
	Run: func(cmd *cobra.Command, args []string) {
		job, err := config.LoadMaskJob(statsConfigPath)
		if err != nil {
			fail(err)
		}
		cfg, pipeline, err := job.ToMaskConfig()
		if err != nil {
			fail(err)
		}
		if err := pipeline.Validate(); err != nil {
			fail(err)
		}

		in, err := openInput(statsInputPath)
		if err != nil {
			fail(err)
		}
		defer in.Close()

		wireEntities, err := readEntities(in)
		if err != nil {
			fail(err)
		}

		population := make([]stats.Entity, 0, len(wireEntities))
		for _, e := range wireEntities {
			attrs := make(map[string]string, len(e.Attributes))
			for name, value := range e.Attributes {
				res, err := pipeline.Apply(e.ID, name, value)
				if err != nil {
					fail(err)
				}
				if res.Skip {
					continue
				}
				attrs[name] = res.Value
			}
			population = append(population, stats.Entity{Attributes: attrs})
		}

		report := stats.Compute(cfg.Attributes, population)

		if err := writeJSON(os.Stdout, report); err != nil {
			fail(err)
		}
	},
}
