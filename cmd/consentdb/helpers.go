// Shared helpers for consentdb CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/store"
	"github.com/consentbase/consentdb/pkg/types"
)

// validEntityNamesStr is a comma-separated list of valid entity names for
// error output.
var validEntityNamesStr = strings.Join(consent.Schemas().EntityNames(), ", ")

// openStore resolves the storage configuration and opens the adapter with
// the consent schemas bound. The caller must defer s.Close().
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := storageConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, cfg, types.Options{Schemas: consent.Schemas()})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// openEngine opens the store and wraps its adapter in a hook pipeline.
func openEngine(ctx context.Context) (*store.Store, *pipeline.Engine, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, pipeline.NewEngine(s.Adapter(), pipeline.NewRegistry(), nil), nil
}

// checkEntity validates an entity name argument early so unknown names
// fail with the valid alternatives instead of a storage error.
func checkEntity(name string) error {
	if _, err := consent.Schemas().Entity(name); err != nil {
		return fmt.Errorf("unknown entity %q (valid: %s)", name, validEntityNamesStr)
	}
	return nil
}

// printRecord prints a record as indented JSON.
func printRecord(record types.Record) error {
	output, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// printRecords prints a record list as indented JSON.
func printRecords(records []types.Record) error {
	output, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// parseFilters converts repeated --filter flags into a Where. A filter is
// field=value, optionally with colon-separated modifiers after the field
// name: an operator (eq, ne, lt, lte, gt, gte, contains, starts_with,
// ends_with, ilike) and/or "or" to move the condition into the OR group.
// Values are kept as strings except unambiguous bools and numbers.
func parseFilters(filters []string) (types.Where, error) {
	var where types.Where
	for _, f := range filters {
		key, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q, want field=value", f)
		}
		parts := strings.Split(key, ":")
		cond := types.Condition{Field: parts[0], Value: parseScalar(raw)}
		for _, mod := range parts[1:] {
			if mod == "or" {
				cond.Connector = types.ConnectorOr
				continue
			}
			cond.Operator = types.Operator(mod)
		}
		where = append(where, cond)
	}
	return where, nil
}

// parseScalar interprets a flag value as bool or number when it parses as
// one, else keeps the string.
func parseScalar(s string) any {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
