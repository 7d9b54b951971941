package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caskpack/caskpack/internal/archive"
	"github.com/caskpack/caskpack/internal/output"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive>",
		Short: "Recompute an archive's SHA-256 and compare it to its sidecar",
		Long: `Verify recomputes the SHA-256 digest over the archive file's exact bytes
and compares it to the value recorded in the <archive>.sha256 sidecar.
Any repackaging of the archive invalidates the sidecar and fails this
check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := archive.VerifyChecksum(args[0])
			if err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("verification failed: %w", err)
			}
			output.Success("%s matches its sidecar (sha256 %s)", args[0], digest)
			return nil
		},
	}
}
