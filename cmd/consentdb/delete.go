// Delete command removes a record by ID.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>",
	Short: "Delete a record by ID",
	Long: `Delete removes a record of the given entity by its ID.

Example:
  consentdb delete consent cns_0190f2`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	entity, id := args[0], args[1]
	if err := checkEntity(entity); err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "delete:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	removed, err := s.Adapter().DeleteMany(ctx, entity, types.Where{types.Eq("id", id)})
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if removed == 0 {
		return fmt.Errorf("%s %q not found", entity, id)
	}
	fmt.Printf("Deleted %s %s\n", entity, id)
	return nil
}
