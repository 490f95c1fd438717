package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errEstimateOutOfScope is returned by both estimate subcommands: synthetic
// data generation (faker-style and Gecko-style corpora) is explicitly out
// of scope for this engine (spec §1's Non-goals) — these subcommands exist
// only so `pprl estimate --help` documents why they are absent, rather
// than the CLI silently lacking them.
var errEstimateOutOfScope = errors.New("not implemented: synthetic data generation is out of scope")

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Synthetic data generation helpers (not implemented)",
}

func init() {
	estimateCmd.AddCommand(&cobra.Command{
		Use:   "faker",
		Short: "Generate a Faker-style synthetic population (not implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errEstimateOutOfScope
		},
	})
	estimateCmd.AddCommand(&cobra.Command{
		Use:   "gecko",
		Short: "Generate a Gecko-style synthetic population (not implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errEstimateOutOfScope
		},
	})
}
