// Package cmd wires the archlens CLI: the root command and the analyze
// subcommand.
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/archlens/archlens/internal/logging"
	"github.com/archlens/archlens/pkg/types"
	"github.com/archlens/archlens/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "archlens",
	Short:   "archlens - analyze a repository's module dependencies and architecture",
	Long:    "archlens scans a source repository, builds a typed module dependency graph,\ndetects architectural layers and cycles, scores the architecture's health,\nand renders the result as a draw.io diagram, Mermaid chart, or HTML dashboard.",
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			logging.Logger().Error(exitErr.Message)
			os.Exit(exitErr.Code)
		}
		logging.Logger().Error(err.Error())
		os.Exit(1)
	}
}
