package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consentbase/consentdb/pkg/types"
)

// exportLine is one JSONL line of an export: the entity name and one of
// its records.
type exportLine struct {
	Entity string       `json:"entity"`
	Record types.Record `json:"record"`
}

// exportPageSize bounds how many records one export query fetches.
const exportPageSize = 500

// Export writes every record of every entity to path as JSON lines, using
// the temp-file, fsync, rename pattern so a crash never leaves a partial
// file behind.
func Export(ctx context.Context, adapter types.Adapter, schemas types.SchemaMap, path string) (int, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	total := 0
	for _, entity := range schemas.EntityNames() {
		for offset := 0; ; offset += exportPageSize {
			page, err := adapter.FindMany(ctx, entity, types.Query{
				Limit:  exportPageSize,
				Offset: offset,
			})
			if err != nil {
				cleanup()
				return 0, fmt.Errorf("exporting %s: %w", entity, err)
			}
			for _, record := range page {
				if err := enc.Encode(exportLine{Entity: entity, Record: record}); err != nil {
					cleanup()
					return 0, fmt.Errorf("encoding %s record: %w", entity, err)
				}
				total++
			}
			if len(page) < exportPageSize {
				break
			}
		}
	}

	if err := w.Flush(); err != nil {
		cleanup()
		return 0, fmt.Errorf("flushing export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return 0, fmt.Errorf("syncing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("renaming export: %w", err)
	}
	return total, nil
}

// Import reads JSON lines written by Export and creates each record.
// Records keep their exported IDs. Malformed lines are skipped, matching
// the tolerant JSONL reading used elsewhere in the project.
func Import(ctx context.Context, adapter types.Adapter, schemas types.SchemaMap, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	total := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry exportLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		schema, err := schemas.Entity(entry.Entity)
		if err != nil {
			return total, err
		}
		reviveDates(schema, entry.Record)
		if _, err := adapter.Create(ctx, entry.Entity, entry.Record); err != nil {
			return total, fmt.Errorf("importing %s record: %w", entry.Entity, err)
		}
		total++
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("scanning %s: %w", path, err)
	}
	return total, nil
}

// reviveDates parses date fields back into time.Time; JSON decoding left
// them as RFC 3339 strings.
func reviveDates(schema types.EntitySchema, record types.Record) {
	for _, f := range schema.Fields {
		if f.Type != types.FieldDate {
			continue
		}
		s, ok := record[f.Name].(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			record[f.Name] = t
		}
	}
}
