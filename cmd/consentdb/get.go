// Get command retrieves an entity by ID.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <entity> <id>",
	Short: "Get a record by ID",
	Long: `Get retrieves a record of the given entity by its ID.

Example:
  consentdb get consent cns_0190f2
  consentdb get subject sub_0190e8`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	entity, id := args[0], args[1]
	if err := checkEntity(entity); err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "get:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	record, err := s.Adapter().FindOne(ctx, entity, types.Where{types.Eq("id", id)})
	if err != nil {
		return fmt.Errorf("get %s: %w", entity, err)
	}
	if record == nil {
		return fmt.Errorf("%s %q not found", entity, id)
	}
	return printRecord(record)
}
