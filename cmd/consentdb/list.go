// List command queries records of an entity.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/types"
)

var (
	listFilters []string
	listSort    string
	listDesc    bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "List records of an entity",
	Long: `List queries records of the given entity with optional filtering,
sorting, and pagination. Filters combine with AND; append :or to a field
name to move the condition into the OR group.

Example:
  consentdb list consent
  consentdb list consent --filter status=active --limit 10
  consentdb list consent --filter subjectId=sub_123 --sort givenAt --desc
  consentdb list subject --filter isIdentified=true`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "filter as field=value or field:op=value (repeatable)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "field to sort by")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of results (0 = default cap)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of results to skip")
}

func runList(cmd *cobra.Command, args []string) error {
	entity := args[0]
	if err := checkEntity(entity); err != nil {
		return err
	}

	where, err := parseFilters(listFilters)
	if err != nil {
		return err
	}

	q := types.Query{
		Where:  where,
		Limit:  listLimit,
		Offset: listOffset,
	}
	if listSort != "" {
		dir := types.SortAsc
		if listDesc {
			dir = types.SortDesc
		}
		q.SortBy = &types.SortBy{Field: listSort, Direction: dir}
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	records, err := s.Adapter().FindMany(ctx, entity, q)
	if err != nil {
		return fmt.Errorf("list %s: %w", entity, err)
	}

	if flagJSON {
		return printRecords(records)
	}
	printRecordTable(entity, records)
	return nil
}

// printRecordTable prints records in a human-readable table format.
func printRecordTable(entity string, records []types.Record) {
	if len(records) == 0 {
		fmt.Println("No records found.")
		return
	}

	schema, _ := consent.Schemas().Entity(entity)
	cols := tableColumns(schema)

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.ToUpper(strings.Join(cols, "\t")))
	for _, r := range records {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = cellString(r[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	output := sb.String()
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d record(s)\n", len(records))
}

// tableColumns picks up to four string-ish fields after the ID so the
// table stays readable.
func tableColumns(schema types.EntitySchema) []string {
	cols := []string{"id"}
	for _, f := range schema.Fields {
		if len(cols) >= 5 {
			break
		}
		if f.Type == types.FieldJSON {
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}

func cellString(v any) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
