package nutrition

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadTable reads the nutrition CSV at tablePath and inserts every row into
// the foods table, preserving file order. The expected header is
// name,kcal,protein,fat,carb,advice; extra columns (such as a precomputed
// name_norm) are ignored and the lookup key is always rederived from name.
//
// A missing or empty table is a startup-fatal error.
func LoadTable(ctx context.Context, db *sqlx.DB, tablePath string) (int, error) {
	f, err := os.Open(tablePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open nutrition table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read nutrition table header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "kcal", "protein", "fat", "carb"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("nutrition table is missing column %q", required)
		}
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const insert = `INSERT INTO foods (name, name_norm, kcal, protein, fat, carb, advice)
	                VALUES (?, ?, ?, ?, ?, ?, ?)`

	count := 0
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("failed to read nutrition table line %d: %w", line, err)
		}

		food, err := parseRecord(record, col)
		if err != nil {
			return 0, fmt.Errorf("invalid nutrition table line %d: %w", line, err)
		}

		if _, err := tx.ExecContext(ctx, insert,
			food.Name, food.NameNorm, food.Kcal, food.Protein, food.Fat, food.Carb, food.Advice,
		); err != nil {
			return 0, fmt.Errorf("failed to insert nutrition table line %d: %w", line, err)
		}
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("nutrition table %s contains no records", tablePath)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit nutrition table load: %w", err)
	}

	slog.Info("Nutrition table loaded", "path", tablePath, "records", count)
	return count, nil
}

func parseRecord(record []string, col map[string]int) (*Food, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field("name")
	if name == "" {
		return nil, fmt.Errorf("empty food name")
	}

	food := &Food{
		Name:     name,
		NameNorm: Normalize(name),
		Advice:   field("advice"),
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"kcal", &food.Kcal},
		{"protein", &food.Protein},
		{"fat", &food.Fat},
		{"carb", &food.Carb},
	} {
		v, err := strconv.ParseFloat(field(f.name), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", f.name, field(f.name), err)
		}
		*f.dst = v
	}

	return food, nil
}
