package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), c.settings().String())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file and cache locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			printKeyValue(w, "config", path)
			if dir, err := c.cacheDir(); err == nil {
				printKeyValue(w, "cache", dir)
			}
			return nil
		},
	})

	return cmd
}
