package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dapmeta",
		Short: "Dataset schema to typed-metadata-store builder",
		Long: `dapmeta lowers a hierarchical dataset schema (groups, dimensions, types,
variables, attributes) into ordered definitions against a typed metadata
store, computing exact byte layouts for composite types along the way.`,
	}

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
