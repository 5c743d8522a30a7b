package ledger

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/store"
	"gastos/internal/store/memory"
)

// recordingStore counts store calls and can be scripted to fail.
type recordingStore struct {
	inner store.Store
	calls int
	fail  error
}

func (r *recordingStore) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	r.calls++
	if r.fail != nil {
		return core.Transaction{}, r.fail
	}
	return r.inner.AddTransaction(ctx, t)
}

func (r *recordingStore) ListMonth(ctx context.Context, month, year int) ([]core.ReportEntry, error) {
	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}
	return r.inner.ListMonth(ctx, month, year)
}

func (r *recordingStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}
	return r.inner.ListCategories(ctx)
}

func (r *recordingStore) AddCategory(ctx context.Context, name string, typ core.ExpenseType) (core.Category, error) {
	r.calls++
	if r.fail != nil {
		return core.Category{}, r.fail
	}
	return r.inner.AddCategory(ctx, name, typ)
}

func (r *recordingStore) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	r.calls++
	if r.fail != nil {
		return false, r.fail
	}
	return r.inner.DeleteTransaction(ctx, id)
}

type capturingPublisher struct {
	events []*amqp.TransactionEvent
}

func (p *capturingPublisher) PublishTransactionEvent(_ context.Context, msg *amqp.TransactionEvent) error {
	p.events = append(p.events, msg)
	return nil
}

func TestAddCategoryValidatesBeforeStoreCall(t *testing.T) {
	rec := &recordingStore{inner: memory.New()}
	svc := New(rec, nil)
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		typ  core.ExpenseType
	}{
		{"", core.Fixed},
		{"   ", core.Fixed},
		{"Renta", ""},
		{"", ""},
	} {
		_, err := svc.AddCategory(ctx, tc.name, tc.typ)
		if !errors.Is(err, ErrIncompleteData) {
			t.Fatalf("AddCategory(%q, %q) error = %v, want ErrIncompleteData", tc.name, tc.typ, err)
		}
	}
	if rec.calls != 0 {
		t.Fatalf("validation failures reached the store %d times", rec.calls)
	}
}

func TestAddCategoryPassesStoreErrorThrough(t *testing.T) {
	rec := &recordingStore{inner: memory.New()}
	svc := New(rec, nil)
	ctx := context.Background()

	if _, err := svc.AddCategory(ctx, "Renta", core.Fixed); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	_, err := svc.AddCategory(ctx, "Renta", core.Fixed)
	if !errors.Is(err, store.ErrDuplicateCategory) {
		t.Fatalf("duplicate error = %v, want ErrDuplicateCategory", err)
	}
}

func TestAddTransactionCollapsesFailuresToFalse(t *testing.T) {
	rec := &recordingStore{inner: memory.New(), fail: errors.New("network is down")}
	svc := New(rec, nil)

	ok := svc.AddTransaction(context.Background(), core.NewDate(2025, 11, 5), core.Money{Cents: 100}, 1, "")
	if ok {
		t.Fatal("store failure must report false")
	}
}

func TestAddTransactionSuccessPublishesEvent(t *testing.T) {
	mem := memory.New()
	cat, err := mem.AddCategory(context.Background(), "Comida", core.Variable)
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	pub := &capturingPublisher{}
	svc := New(mem, pub)

	ok := svc.AddTransaction(context.Background(), core.NewDate(2025, 11, 5), core.Money{Cents: 5000}, cat.ID, "mercado")
	if !ok {
		t.Fatal("AddTransaction should succeed")
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	e := pub.events[0]
	if e.Action != amqp.ActionCreated || e.AmountCents != 5000 || e.CategoryID != cat.ID {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestListMonthCollapsesFailuresToEmpty(t *testing.T) {
	rec := &recordingStore{inner: memory.New(), fail: errors.New("query failed")}
	svc := New(rec, nil)

	entries := svc.ListMonth(context.Background(), 11, 2025)
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}

func TestListCategoriesCollapsesFailuresToEmpty(t *testing.T) {
	rec := &recordingStore{inner: memory.New(), fail: errors.New("auth rejected")}
	svc := New(rec, nil)

	cats := svc.ListCategories(context.Background())
	if len(cats) != 0 {
		t.Fatalf("categories = %d, want 0", len(cats))
	}
}

func TestDeleteTransaction(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	cat, err := mem.AddCategory(ctx, "Comida", core.Variable)
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	tx, err := mem.AddTransaction(ctx, core.Transaction{
		Date: core.NewDate(2025, 11, 5), Amount: core.Money{Cents: 100}, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	pub := &capturingPublisher{}
	svc := New(mem, pub)

	if !svc.DeleteTransaction(ctx, tx.ID) {
		t.Fatal("delete of an existing transaction should report true")
	}
	if svc.DeleteTransaction(ctx, tx.ID) {
		t.Fatal("delete of a missing transaction should report false")
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionDeleted {
		t.Fatalf("expected one delete event, got %+v", pub.events)
	}
}

func TestAddThenListMonthRoundTrip(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	cat, err := mem.AddCategory(ctx, "Comida", core.Variable)
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	svc := New(mem, nil)

	if !svc.AddTransaction(ctx, core.NewDate(2025, 11, 5), core.Money{Cents: 5000}, cat.ID, "mercado") {
		t.Fatal("AddTransaction failed")
	}

	entries := svc.ListMonth(ctx, 11, 2025)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Date.ISO() != "2025-11-05" || e.Amount.Cents != 5000 || e.CategoryName != "Comida" {
		t.Fatalf("round trip mismatch: %+v", e)
	}
}
