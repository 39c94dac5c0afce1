// Count command counts records of an entity.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var countFilters []string

var countCmd = &cobra.Command{
	Use:   "count <entity>",
	Short: "Count records of an entity",
	Long: `Count returns how many records of the given entity match the
filters.

Example:
  consentdb count consent
  consentdb count consent --filter status=active`,
	Args: cobra.ExactArgs(1),
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringArrayVar(&countFilters, "filter", nil, "filter as field=value or field:op=value (repeatable)")
}

func runCount(cmd *cobra.Command, args []string) error {
	entity := args[0]
	if err := checkEntity(entity); err != nil {
		return err
	}

	where, err := parseFilters(countFilters)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "count:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	n, err := s.Adapter().Count(ctx, entity, where)
	if err != nil {
		return fmt.Errorf("count %s: %w", entity, err)
	}
	fmt.Println(n)
	return nil
}
