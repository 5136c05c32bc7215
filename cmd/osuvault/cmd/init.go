/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/osuvault/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default osuvault config",
	Long: `Write a default configuration file and create the data directory.

Examples:
  osuvault init
  osuvault init --config=./osuvault.yaml --data-dir=./data --force`,
	// init must work even when the existing config does not load
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		cfg, created, err := initializeConfig(configPath, dataDir, force)
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cmd.Printf("Wrote config to %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}

// initializeConfig writes a default config unless one exists and force is
// unset. created reports whether a file was written.
func initializeConfig(configPath, dataDir string, force bool) (cfg *config.Config, created bool, err error) {
	if configPath == "" {
		return nil, false, fmt.Errorf("config path is required")
	}
	if config.ConfigExists(configPath) && !force {
		cfg, err := config.LoadConfig(configPath)
		return cfg, false, err
	}

	cfg, err = config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}
