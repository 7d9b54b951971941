// Package commands provides the CLI command implementations for caskpack.
// This file defines the root command and registers all subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/caskpack/caskpack/internal/output"
)

// Local variables for flag binding (Cobra requires pointers to local vars)
var (
	configPath string
	jsonMode   bool
	noColor    bool
	verbose    bool
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caskpack",
		Short: "Package a Python CLI into a relocatable bundle for Homebrew Cask distribution",
		Long: `caskpack packages a Python CLI project into a self-contained, relocatable
bundle: an embedded virtual environment under libexec/ plus a launcher
script under bin/ that locates its own interpreter wherever the bundle is
installed. The staged bundle is archived as tar.gz with a SHA-256 sidecar
for downstream PKG building, signing and cask templating.

Examples:
  # Build a bundle for the project in the current directory
  caskpack build --platform-tag macos-arm64

  # Build with a CI-driven version override and no extras
  caskpack build --version 2.0.0-rc.1 --extras ""

  # Verify an archive against its checksum sidecar
  caskpack verify dist/artifacts/mycli-1.0.0-macos-arm64.tar.gz`,
		PersistentPreRunE:  persistentPreRunE,
		SilenceErrors:      true,
		DisableSuggestions: false,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to caskpack.toml (default: discover in cwd and project root)")
	cmd.PersistentFlags().BoolVar(&jsonMode, "json", false,
		"Output in JSON format")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// persistentPreRunE applies global flags to the default logger before any
// command runs.
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	output.DefaultLogger.SetNoColor(noColor)
	output.DefaultLogger.SetVerbose(verbose)
	output.DefaultLogger.SetJSONMode(jsonMode)
	return nil
}
