// Init command for the consentdb CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize consentdb storage",
	Long: `Init resolves the configuration directory, writes a default
config.yaml when missing, opens the configured storage backend (creating
entity tables on first run), and seeds the baseline consent purposes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		ctx := cmd.Context()
		s, eng, err := openEngine(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		seeded, err := seedPurposes(ctx, eng)
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		fmt.Println("consentdb initialized successfully")
		fmt.Println("  config:", configDir)
		if seeded > 0 {
			fmt.Printf("  seeded: %d baseline purposes\n", seeded)
		}
		return nil
	},
}
