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
		Use:   "glintd",
		Short: "Backend-driven UI session server",
		Long: `Glintd runs web applications whose entire state lives on the
server. The browser is a thin renderer: it forwards events over a
WebSocket and applies the targeted DOM updates the server sends back.

This binary serves the built-in demo application; embed the server
packages to serve your own pages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
