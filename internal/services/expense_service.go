package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensed/internal/core"
	"expensed/internal/events"
	"expensed/internal/storage"
)

// EventPublisher is the slice of the events client the service needs.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, action string, id int64) error
	Close() error
}

// ExpenseService runs expense operations against the store and publishes a
// mutation event after each successful write. Publishing is best effort: the
// record is already persisted, so a broker failure never fails the call.
type ExpenseService struct {
	store     *storage.SQLiteStore
	publisher EventPublisher
}

// NewExpenseService creates a service. publisher may be nil when events are
// disabled.
func NewExpenseService(store *storage.SQLiteStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// CreateExpense validates and stores a new record, returning its assigned id.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.ExpenseRecord) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	s.publishEvent(ctx, events.ActionCreated, id)
	return id, nil
}

// ListExpenses returns records in the inclusive date range, insertion order.
func (s *ExpenseService) ListExpenses(ctx context.Context, startDate, endDate string) ([]core.ExpenseRecord, error) {
	return s.store.ListExpenses(ctx, startDate, endDate)
}

// Summarize returns per-category totals for the inclusive date range,
// optionally filtered to one category (empty string means no filter).
func (s *ExpenseService) Summarize(ctx context.Context, startDate, endDate, category string) ([]core.CategoryTotal, error) {
	return s.store.SummarizeByCategory(ctx, startDate, endDate, category)
}

// DeleteExpense removes a record. core.ErrExpenseNotFound passes through as a
// business outcome.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, events.ActionDeleted, id)
	return nil
}

// UpdateExpense applies a partial update. core.ErrExpenseNotFound and
// core.ErrNoFieldsToUpdate pass through as business outcomes.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, u core.ExpenseUpdate) error {
	if err := s.store.UpdateExpense(ctx, id, u); err != nil {
		return err
	}

	s.publishEvent(ctx, events.ActionUpdated, id)
	return nil
}

func (s *ExpenseService) publishEvent(ctx context.Context, action string, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action, "id", id, "error", err)
	}
}

// Close closes the store and, when present, the event publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
