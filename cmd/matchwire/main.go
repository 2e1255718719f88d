package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matchwire",
		Short: "Live match event reporting client",
		Long: `Matchwire is a broker client for live match event reporting.

It speaks a text-based, frame-oriented messaging protocol over TCP or
WebSocket: log in, join game topics, report events from JSON source files,
and build per-game summaries aggregated from every reporter you follow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
