package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func countColumn(t *testing.T, dbPath, table, column string) int {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			t.Fatalf("scan table_info: %v", err)
		}
		if name == column {
			count++
		}
	}
	return count
}

func TestRunMigrationsTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	for i := 0; i < 2; i++ {
		if err := RunMigrations(dbPath); err != nil {
			t.Fatalf("RunMigrations (run %d) failed: %v", i+1, err)
		}
	}

	if n := countColumn(t, dbPath, "expenses", "paid_by"); n != 1 {
		t.Fatalf("paid_by column count = %d, want 1", n)
	}
}

// A database created before migrations existed (no version table, no paid_by
// column) must be adopted: the column is added and existing rows survive.
func TestRunMigrationsAdoptsLegacyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO expenses (date, amount, category) VALUES ('2023-12-24', 9.99, 'Food')`,
	); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	db.Close()

	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("RunMigrations failed on legacy database: %v", err)
	}

	if n := countColumn(t, dbPath, "expenses", "paid_by"); n != 1 {
		t.Fatalf("paid_by column count = %d, want 1", n)
	}

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	got, err := store.ListExpenses(context.Background(), "2023-01-01", "2023-12-31")
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("legacy row lost, got %d rows", len(got))
	}
	if got[0].PaidBy != "" {
		t.Errorf("legacy row paid_by = %q, want empty default", got[0].PaidBy)
	}
}

// A legacy database that already carries paid_by (added out of band) is
// baselined past the column migration instead of failing on a duplicate.
func TestRunMigrationsLegacyWithPaidBy(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		paid_by TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	db.Close()

	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if n := countColumn(t, dbPath, "expenses", "paid_by"); n != 1 {
		t.Fatalf("paid_by column count = %d, want 1", n)
	}
}
