package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensed/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the single-table expense store. Every operation executes one
// parameterized statement on a pooled connection; there is no cross-operation
// state, locking or retry policy beyond what SQLite itself provides.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateExpense inserts one record and returns the id the store assigned.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e core.ExpenseRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (date, amount, category, subcategory, note, paid_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Date, e.Amount, e.Category, e.Subcategory, e.Note, e.PaidBy)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", id,
		"date", e.Date,
		"amount", e.Amount,
		"category", e.Category)

	return id, nil
}

// ListExpenses returns all records whose date lies between start and end
// inclusive, in insertion order. Dates compare as strings, so the bounds must
// use the same sortable format the records were stored with.
func (s *SQLiteStore) ListExpenses(ctx context.Context, startDate, endDate string) ([]core.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, amount, category, subcategory, note, paid_by
		 FROM expenses
		 WHERE date BETWEEN ? AND ?
		 ORDER BY id ASC`,
		startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.ExpenseRecord{}
	for rows.Next() {
		var e core.ExpenseRecord
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note, &e.PaidBy); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}

	return expenses, nil
}

// SummarizeByCategory sums amounts per category over the inclusive date
// range, optionally restricted to one category. Categories with no matching
// records are omitted. Sums use float64 addition, same as the stored values.
func (s *SQLiteStore) SummarizeByCategory(ctx context.Context, startDate, endDate, category string) ([]core.CategoryTotal, error) {
	query := `SELECT category, SUM(amount) AS total_amount
	          FROM expenses
	          WHERE date BETWEEN ? AND ?`
	args := []any{startDate, endDate}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` GROUP BY category ORDER BY category ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	totals := []core.CategoryTotal{}
	for rows.Next() {
		var t core.CategoryTotal
		if err := rows.Scan(&t.Category, &t.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	return totals, nil
}

// DeleteExpense removes the record with the given id. A missing id is a
// normal outcome reported as core.ErrExpenseNotFound, not a store failure.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrExpenseNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// updatableColumns is the fixed allow-list of columns a partial update may
// touch. Column names come only from here; values are always bound.
var updatableColumns = []struct {
	name  string
	value func(core.ExpenseUpdate) any
}{
	{"date", func(u core.ExpenseUpdate) any {
		if u.Date != nil {
			return *u.Date
		}
		return nil
	}},
	{"amount", func(u core.ExpenseUpdate) any {
		if u.Amount != nil {
			return *u.Amount
		}
		return nil
	}},
	{"category", func(u core.ExpenseUpdate) any {
		if u.Category != nil {
			return *u.Category
		}
		return nil
	}},
	{"subcategory", func(u core.ExpenseUpdate) any {
		if u.Subcategory != nil {
			return *u.Subcategory
		}
		return nil
	}},
	{"note", func(u core.ExpenseUpdate) any {
		if u.Note != nil {
			return *u.Note
		}
		return nil
	}},
	{"paid_by", func(u core.ExpenseUpdate) any {
		if u.PaidBy != nil {
			return *u.PaidBy
		}
		return nil
	}},
}

// UpdateExpense applies the supplied fields to one record, leaving absent
// fields untouched. An empty update set returns core.ErrNoFieldsToUpdate
// without touching the store.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, id int64, u core.ExpenseUpdate) error {
	if u.IsEmpty() {
		return core.ErrNoFieldsToUpdate
	}

	var (
		assignments string
		args        []any
	)
	for _, col := range updatableColumns {
		v := col.value(u)
		if v == nil {
			continue
		}
		if assignments != "" {
			assignments += ", "
		}
		assignments += col.name + " = ?"
		args = append(args, v)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE expenses SET `+assignments+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrExpenseNotFound
	}

	slog.InfoContext(ctx, "Expense updated", "id", id, "fields", len(args)-1)
	return nil
}
