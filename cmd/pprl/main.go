// Command pprl is the CLI front end over the masking core: transform,
// mask, match, stats, serve, and a stubbed estimate subcommand, following
// distribution-distribution's registry.RootCmd cobra layout (one
// cobra.Command per operation, wired onto a shared root command).
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("pprl command failed")
		os.Exit(1)
	}
}
