package commands

import (
	"encoding/json"
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/caskpack/caskpack/cmd/caskpack/commands.version={{.Version}}
//	-X github.com/caskpack/caskpack/cmd/caskpack/commands.commit={{.FullCommit}}
//	-X github.com/caskpack/caskpack/cmd/caskpack/commands.date={{.Date}}
var (
	version = ""
	commit  = ""
	date    = ""
	builtBy = ""
)

const website = "https://github.com/caskpack/caskpack"

func buildVersionInfo() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("caskpack", "Relocatable bundle builder for Python CLIs.", website),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var (
		long       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildVersionInfo()

			switch {
			case jsonOutput:
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case long:
				data, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show detailed version info in YAML")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info in JSON format")

	return cmd
}
