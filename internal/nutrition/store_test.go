package nutrition

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

const testCSV = `name,kcal,protein,fat,carb,advice
叉燒飯,650,30,20,80,配燙青菜更均衡
滷肉飯,600,25,28,70,醬汁先瀝一下再吃
牛肉麵,550,35,15,60,湯喝一半就好
fried chicken,480,40,30,5,去皮可以少很多油脂
chicken rice,620,32,18,75,雞皮熱量高
`

func newTestStore(t *testing.T) (Store, *sqlx.DB) {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	path := filepath.Join(t.TempDir(), "nutrition.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("failed to write test table: %v", err)
	}
	if _, err := LoadTable(context.Background(), db, path); err != nil {
		t.Fatalf("failed to load test table: %v", err)
	}

	return NewStore(db, nil), db
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase passthrough", input: "fried_rice", expected: "fried_rice"},
		{name: "uppercase folded", input: "Fried Rice", expected: "friedrice"},
		{name: "inner whitespace stripped", input: "chicken  rice", expected: "chickenrice"},
		{name: "tabs and newlines stripped", input: "\tchar siu\nrice ", expected: "charsiurice"},
		{name: "cjk preserved", input: "叉燒 飯", expected: "叉燒飯"},
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: " \t\n ", expected: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tc.input); got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestLookupExactMatch(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		wantName string
	}{
		{name: "exact cjk", query: "叉燒飯", wantName: "叉燒飯"},
		{name: "exact with whitespace", query: "叉燒 飯", wantName: "叉燒飯"},
		{name: "exact latin case-insensitive", query: "Fried Chicken", wantName: "fried chicken"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			food, err := store.Lookup(ctx, tc.query)
			if err != nil {
				t.Fatalf("Lookup(%q) returned error: %v", tc.query, err)
			}
			if food == nil {
				t.Fatalf("Lookup(%q) returned nil, want %q", tc.query, tc.wantName)
			}
			if food.Name != tc.wantName {
				t.Errorf("Lookup(%q).Name = %q, want %q", tc.query, food.Name, tc.wantName)
			}
		})
	}
}

func TestLookupEveryRecordByOwnName(t *testing.T) {
	t.Parallel()
	store, db := newTestStore(t)
	ctx := context.Background()

	var foods []Food
	if err := db.SelectContext(ctx, &foods, "SELECT * FROM foods ORDER BY id"); err != nil {
		t.Fatalf("failed to read table: %v", err)
	}
	if len(foods) != 5 {
		t.Fatalf("expected 5 records loaded, got %d", len(foods))
	}

	for _, f := range foods {
		got, err := store.Lookup(ctx, f.Name)
		if err != nil {
			t.Fatalf("Lookup(%q) returned error: %v", f.Name, err)
		}
		if got == nil || got.ID != f.ID {
			t.Errorf("Lookup(%q) did not return the record itself", f.Name)
		}
	}
}

func TestLookupSubstringFirstMatchWins(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	// "飯" appears in 叉燒飯 (row 1) and 滷肉飯 (row 2); table order decides.
	food, err := store.Lookup(ctx, "飯")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if food == nil {
		t.Fatal("Lookup returned nil, want substring match")
	}
	if food.Name != "叉燒飯" {
		t.Errorf("Lookup(\"飯\") = %q, want first record in table order %q", food.Name, "叉燒飯")
	}

	// "chicken" prefers the exact-free substring match in table order too.
	food, err = store.Lookup(ctx, "chicken")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if food == nil || food.Name != "fried chicken" {
		t.Errorf("Lookup(\"chicken\") = %+v, want fried chicken", food)
	}
}

func TestLookupDeterminism(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	var first *Food
	for i := 0; i < 10; i++ {
		food, err := store.Lookup(ctx, "飯")
		if err != nil {
			t.Fatalf("Lookup returned error on call %d: %v", i, err)
		}
		if food == nil {
			t.Fatalf("Lookup returned nil on call %d", i)
		}
		if first == nil {
			first = food
			continue
		}
		if food.ID != first.ID || food.Name != first.Name {
			t.Fatalf("Lookup result changed between calls: %+v vs %+v", first, food)
		}
	}
}

func TestLookupMiss(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	tests := []string{"pizza", "how's the weather", "早餐吃什麼", ""}
	for _, query := range tests {
		food, err := store.Lookup(ctx, query)
		if err != nil {
			t.Fatalf("Lookup(%q) returned error: %v", query, err)
		}
		if food != nil {
			t.Errorf("Lookup(%q) = %+v, want nil", query, food)
		}
	}
}

func TestLookupRecordFields(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	food, err := store.Lookup(context.Background(), "叉燒飯")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if food == nil {
		t.Fatal("Lookup returned nil")
	}
	if food.Kcal != 650 || food.Protein != 30 || food.Fat != 20 || food.Carb != 80 {
		t.Errorf("unexpected macros: %+v", food)
	}
	if food.Advice != "配燙青菜更均衡" {
		t.Errorf("unexpected advice: %q", food.Advice)
	}
	if food.NameNorm != "叉燒飯" {
		t.Errorf("unexpected name_norm: %q", food.NameNorm)
	}
}

func TestMaintain(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	if err := store.Maintain(context.Background()); err != nil {
		t.Fatalf("Maintain returned error: %v", err)
	}
}

func TestLoadTableErrors(t *testing.T) {
	t.Parallel()

	newDB := func(t *testing.T) *sqlx.DB {
		t.Helper()
		db, err := NewDB(":memory:")
		if err != nil {
			t.Fatalf("failed to open test database: %v", err)
		}
		t.Cleanup(func() { CloseDB(db) })
		return db
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		db := newDB(t)
		if _, err := LoadTable(context.Background(), db, filepath.Join(t.TempDir(), "absent.csv")); err == nil {
			t.Fatal("expected error for missing table file")
		}
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()
		db := newDB(t)
		path := filepath.Join(t.TempDir(), "bad.csv")
		if err := os.WriteFile(path, []byte("name,kcal\nrice,200\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTable(context.Background(), db, path); err == nil {
			t.Fatal("expected error for missing columns")
		}
	})

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()
		db := newDB(t)
		path := filepath.Join(t.TempDir(), "empty.csv")
		if err := os.WriteFile(path, []byte("name,kcal,protein,fat,carb,advice\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTable(context.Background(), db, path); err == nil {
			t.Fatal("expected error for table with no records")
		}
	})

	t.Run("invalid number", func(t *testing.T) {
		t.Parallel()
		db := newDB(t)
		path := filepath.Join(t.TempDir(), "nan.csv")
		if err := os.WriteFile(path, []byte("name,kcal,protein,fat,carb,advice\nrice,lots,1,1,1,ok\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTable(context.Background(), db, path); err == nil {
			t.Fatal("expected error for non-numeric kcal")
		}
	})
}
