// File: cmd/version.go
package cmd

import (
	"fmt"

	"codedump/pkg/version"

	"github.com/spf13/cobra"
)

// newVersionCommand creates the version command. --short prints only the
// version number; --output yaml prints every field for scripts.
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of codedump",
		Long:  `Display the version, commit, build time and platform of the codedump binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			format := version.Format(output)
			if short {
				format = version.FormatShort
			}
			return version.Get().Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().BoolP("short", "s", false, "Print the version number only")
	cmd.Flags().StringP("output", "o", string(version.FormatText), "Output format: text or yaml")
	return cmd
}
