// Export command dumps the store's contents to a JSONL file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all records to a JSONL file",
	Long: `Export writes every record of every entity to the given file as
JSON lines. The file is written atomically.

Example:
  consentdb export backup.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	n, err := store.Export(ctx, s.Adapter(), consent.Schemas(), path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("Exported %d record(s) to %s\n", n, path)
	return nil
}
