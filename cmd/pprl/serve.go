package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ul-mds/pprl/internal/server"
)

var (
	serveSocketPath     string
	serveMaxConcurrency int
	serveIdleTimeout    time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&serveSocketPath, "socket", "", "Unix domain socket path (default: $PPRL_SOCKET or /tmp/pprl.sock)")
	serveCmd.Flags().IntVar(&serveMaxConcurrency, "max-concurrency", 0, "maximum concurrent connections (0 = default)")
	serveCmd.Flags().DurationVar(&serveIdleTimeout, "idle-timeout", 0, "idle connection timeout (0 = default)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Unix domain socket front end for transform/mask/match/stats requests",
	Run: func(cmd *cobra.Command, args []string) {
		srv := server.New(server.Config{
			SocketPath:     serveSocketPath,
			MaxConcurrency: serveMaxConcurrency,
			IdleTimeout:    serveIdleTimeout,
		})
		if err := srv.Start(); err != nil {
			fail(err)
		}
	},
}
