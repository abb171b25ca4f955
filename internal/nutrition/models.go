package nutrition

import (
	"strings"
	"unicode"
)

// Food represents one row of the nutrition table. Rows are immutable after
// the table is loaded at startup.
type Food struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	NameNorm string  `db:"name_norm"`
	Kcal     float64 `db:"kcal"`
	Protein  float64 `db:"protein"`
	Fat      float64 `db:"fat"`
	Carb     float64 `db:"carb"`
	Advice   string  `db:"advice"`
}

// Normalize derives the lookup key for a food name or query: lowercased with
// all whitespace removed. No further Unicode folding is applied.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
