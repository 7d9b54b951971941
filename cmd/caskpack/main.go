package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/caskpack/caskpack/cmd/caskpack/commands"
	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/output"
)

func main() {
	color.NoColor = false

	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		if hint := bundle.RecoveryHint(err); hint != "" {
			output.Info("Hint: %s", hint)
		}
		os.Exit(1)
	}
}
