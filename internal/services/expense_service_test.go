package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensed/internal/core"
	"expensed/internal/storage"
)

// recordingPublisher captures published events; fail makes every publish
// return an error.
type recordingPublisher struct {
	actions []string
	ids     []int64
	fail    bool
}

func (p *recordingPublisher) PublishExpenseEvent(ctx context.Context, action string, id int64) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.actions = append(p.actions, action)
	p.ids = append(p.ids, id)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(t *testing.T, publisher EventPublisher) *ExpenseService {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewExpenseService(store, publisher)
}

func TestCreateExpensePublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)

	id, err := svc.CreateExpense(context.Background(), core.ExpenseRecord{
		Date: "2024-01-05", Amount: 12.50, Category: "Food",
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if len(pub.actions) != 1 || pub.actions[0] != "created" || pub.ids[0] != id {
		t.Errorf("expected one created event for id %d, got %v %v", id, pub.actions, pub.ids)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.CreateExpense(context.Background(), core.ExpenseRecord{
		Date: "2024-01-05", Amount: 5,
	})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("got %v, want ErrEmptyCategory", err)
	}
}

func TestCreateExpenseWithoutPublisher(t *testing.T) {
	svc := newTestService(t, nil)

	if _, err := svc.CreateExpense(context.Background(), core.ExpenseRecord{
		Date: "2024-01-05", Amount: 5, Category: "Food",
	}); err != nil {
		t.Fatalf("CreateExpense without publisher failed: %v", err)
	}
}

// A broker failure is logged but never fails the operation: the record is
// already persisted.
func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc := newTestService(t, &recordingPublisher{fail: true})
	ctx := context.Background()

	id, err := svc.CreateExpense(ctx, core.ExpenseRecord{
		Date: "2024-01-05", Amount: 5, Category: "Food",
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := svc.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
}

func TestDeleteAndUpdatePublishMatchingEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	id, err := svc.CreateExpense(ctx, core.ExpenseRecord{
		Date: "2024-01-05", Amount: 5, Category: "Food",
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	note := "updated"
	if err := svc.UpdateExpense(ctx, id, core.ExpenseUpdate{Note: &note}); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if err := svc.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	want := []string{"created", "updated", "deleted"}
	if len(pub.actions) != len(want) {
		t.Fatalf("actions = %v, want %v", pub.actions, want)
	}
	for i := range want {
		if pub.actions[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, pub.actions[i], want[i])
		}
	}
}

// Business outcomes pass through untouched and publish nothing.
func TestNoEventOnBusinessError(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	if err := svc.DeleteExpense(ctx, 999); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("delete: got %v, want ErrExpenseNotFound", err)
	}
	if err := svc.UpdateExpense(ctx, 999, core.ExpenseUpdate{}); !errors.Is(err, core.ErrNoFieldsToUpdate) {
		t.Fatalf("update: got %v, want ErrNoFieldsToUpdate", err)
	}

	if len(pub.actions) != 0 {
		t.Errorf("expected no events, got %v", pub.actions)
	}
}
