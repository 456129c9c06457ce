package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/gridkit/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gridkit.json in the current directory",
		Long: `Write a gridkit.json with default settings to the current
directory. Edit it to pick a dataset and tune the grid.

Examples:
  gridkit init
  gridkit init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if config.Exists(dir) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFileName)
			}

			cfg := config.New()
			if err := cfg.SaveTo(config.ConfigFileName); err != nil {
				return err
			}

			success("Created %s", config.ConfigFileName)
			info("Run 'gridkit serve' to start the server")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
