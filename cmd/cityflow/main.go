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
		Use:   "cityflow",
		Short: "Live traffic dashboard client for city websocket feeds",
		Long: `Cityflow follows a city traffic websocket feed and keeps a local
mirror of the city state.

It maintains:

  • The latest city snapshot (intersections, phases, metrics)
  • Active incidents and ambulance priority corridors
  • The server event log for timeline display
  • A replay buffer of recent snapshots for scrubbing

The feed URL comes from cityflow.json or the CITYFLOW_URL
environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		watchCmd(),
		dispatchCmd(),
		incidentCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
