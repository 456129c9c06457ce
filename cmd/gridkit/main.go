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

const banner = `
  ╔═╗┬─┐┬┌┬┐┬┌─┬┌┬┐
  ║ ╦├┬┘│ ││├┴┐│ │
  ╚═╝┴└─┴─┴┘┴ ┴┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridkit",
		Short: "URL-backed data grid server",
		Long: `GridKit serves data grids whose view state lives in the URL.

Sorting, filtering, search and pagination are encoded as query
parameters, so every view is a shareable deep link. Connected
clients stay in sync over WebSocket; plain HTTP serves the same
views statelessly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the GridKit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
