// Import command loads records from a JSONL file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from a JSONL file",
	Long: `Import reads JSON lines written by export and creates each record,
keeping exported IDs.

Example:
  consentdb import backup.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	n, err := store.Import(ctx, s.Adapter(), consent.Schemas(), path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("Imported %d record(s) from %s\n", n, path)
	return nil
}
