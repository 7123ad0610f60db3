package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnoverse/bitwidth/analyze"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

// initCmd: bitwidth init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, forceInit); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

var errConfigExists = errors.New("configuration file already exists, use --force to overwrite")

func initConfigurationFile(configurationPath string, force bool) error {
	if configurationPath == "" {
		configurationPath = analyze.DefaultConfigPath
	}
	if _, err := os.Stat(configurationPath); err == nil && !force {
		return errConfigExists
	}

	d, err := yaml.Marshal(analyze.DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(configurationPath, d, 0o644)
}
