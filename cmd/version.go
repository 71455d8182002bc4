package cmd

import (
	"fmt"
	"runtime"

	"github.com/bnema/repostctl/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return err
			}

			line := fmt.Sprintf("repostctl %s (%s, %s/%s)", version.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if rev := version.Revision(); rev != "" {
				line += " rev " + rev
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the version number only")
	return cmd
}
