// Root command for the consentdb CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/internal/paths"
)

// Version is the CLI version, overridable at build time via -ldflags.
var Version = "0.1.0"

// Exit codes: 1 for user errors (bad arguments, unknown entities), 2 for
// system errors (storage failures, unreadable config).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

// loadedConfig is the viper instance loaded by PersistentPreRunE.
var loadedConfig = defaultViper()

var rootCmd = &cobra.Command{
	Use:     "consentdb",
	Short:   "consentdb is a consent-management storage service",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		loadedConfig = cfg
		configDataDir = cfg.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.consentdb)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(purposesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// resolveDataDir returns the data directory following the precedence:
// --data-dir flag > config.yaml data_dir > CONSENTDB_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > CONSENTDB_CONFIG_DIR env > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
