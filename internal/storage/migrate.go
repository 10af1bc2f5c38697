package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the expenses schema up to date. Databases created
// before migrations were introduced carry no version table; those are
// baselined first by inspecting the actual columns, so the paid_by addition
// is applied exactly once and never by swallowing a duplicate-column error.
func RunMigrations(dbPath string) error {
	// Separate connection so migration locking never interferes with the pool.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	baseline, err := baselineVersion(migrateDB)
	if err != nil {
		return fmt.Errorf("inspect schema baseline: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if baseline > 0 {
		if err := m.Force(baseline); err != nil {
			return fmt.Errorf("force baseline version %d: %w", baseline, err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// baselineVersion returns the migration version a pre-migrate database is
// already at, or 0 when the database is fresh or already version-managed.
// Version 1 is the original expenses table, version 2 has the paid_by column.
func baselineVersion(db *sql.DB) (int, error) {
	hasExpenses, err := tableExists(db, "expenses")
	if err != nil {
		return 0, err
	}
	if !hasExpenses {
		return 0, nil
	}

	hasVersions, err := tableExists(db, "schema_migrations")
	if err != nil {
		return 0, err
	}
	if hasVersions {
		return 0, nil
	}

	hasPaidBy, err := columnExists(db, "expenses", "paid_by")
	if err != nil {
		return 0, err
	}
	if hasPaidBy {
		return 2, nil
	}
	return 1, nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query sqlite_master for %s: %w", name, err)
	}
	return n > 0, nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

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
			return false, fmt.Errorf("scan table_info row: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
