package core

import (
	"errors"
	"strings"
)

type (
	// ExpenseRecord is one stored expense row. Dates are opaque caller-supplied
	// strings; range queries compare them lexicographically, so callers must use
	// a sortable format (e.g. ISO 8601) for range semantics to be meaningful.
	ExpenseRecord struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		Note        string  `json:"note"`
		PaidBy      string  `json:"paid_by"`
	}

	// ExpenseUpdate carries the fields of a partial update. A nil field means
	// "leave unchanged"; a non-nil pointer to a zero value ("" or 0) is an
	// explicit assignment and is applied.
	ExpenseUpdate struct {
		Date        *string
		Amount      *float64
		Category    *string
		Subcategory *string
		Note        *string
		PaidBy      *string
	}

	// CategoryTotal is one row of a per-category amount summary.
	CategoryTotal struct {
		Category    string  `json:"category"`
		TotalAmount float64 `json:"total_amount"`
	}
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrEmptyDate        = errors.New("empty date")
	ErrEmptyCategory    = errors.New("empty category")
)

// Validate checks the invariants a record must satisfy before it is stored:
// date and category are always present. Amounts are not validated; the store
// accepts any float64, including zero and negatives (refunds).
func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// IsEmpty reports whether the update carries no fields at all.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Date == nil && u.Amount == nil && u.Category == nil &&
		u.Subcategory == nil && u.Note == nil && u.PaidBy == nil
}
