package cmd

import (
	"fmt"

	"github.com/bnema/repostctl/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialise settings",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings.toml with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := config.ResolveRoot()
			if err != nil {
				return err
			}

			path, err := config.WriteDefault(root, force)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print effective settings, including environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			encode := config.Encode
			switch format {
			case "toml":
			case "yaml":
				encode = config.EncodeYAML
			default:
				return fmt.Errorf("unsupported format %q (want toml or yaml)", format)
			}

			root, err := config.ResolveRoot()
			if err != nil {
				return err
			}

			_, settings, err := config.Load(root)
			if err != nil {
				return err
			}

			encoded, err := encode(settings)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml or yaml")

	return cmd
}
