package memory

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
	"gastos/internal/store"
)

func TestCategoryUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.AddCategory(ctx, "Renta", core.Fixed); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if _, err := s.AddCategory(ctx, "Renta", core.Fixed); !errors.Is(err, store.ErrDuplicateCategory) {
		t.Fatalf("error = %v, want ErrDuplicateCategory", err)
	}
}

func TestCategoriesSortedByName(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"Renta", "Comida", "Luz"} {
		if _, err := s.AddCategory(ctx, name, core.Variable); err != nil {
			t.Fatalf("AddCategory(%s): %v", name, err)
		}
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	want := []string{"Comida", "Luz", "Renta"}
	for i, w := range want {
		if cats[i].Name != w {
			t.Fatalf("cats[%d] = %q, want %q", i, cats[i].Name, w)
		}
	}
}

func TestTransactionNeedsCategory(t *testing.T) {
	s := New()
	_, err := s.AddTransaction(context.Background(), core.Transaction{
		Date:       core.NewDate(2025, 11, 5),
		Amount:     core.Money{Cents: 100},
		CategoryID: 7,
	})
	if !errors.Is(err, store.ErrUnknownCategory) {
		t.Fatalf("error = %v, want ErrUnknownCategory", err)
	}
}

func TestMonthBoundaries(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, err := s.AddCategory(ctx, "Comida", core.Variable)
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	dates := []core.Date{
		core.NewDate(2025, 10, 31), // previous month
		core.NewDate(2025, 11, 1),  // first day, included
		core.NewDate(2025, 11, 30), // last day, included
		core.NewDate(2025, 12, 1),  // first of next month, excluded
	}
	for _, d := range dates {
		if _, err := s.AddTransaction(ctx, core.Transaction{
			Date: d, Amount: core.Money{Cents: 100}, CategoryID: cat.ID,
		}); err != nil {
			t.Fatalf("AddTransaction(%s): %v", d.ISO(), err)
		}
	}

	entries, err := s.ListMonth(ctx, 11, 2025)
	if err != nil {
		t.Fatalf("ListMonth: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Date.ISO() != "2025-11-01" || entries[1].Date.ISO() != "2025-11-30" {
		t.Fatalf("unexpected dates: %s, %s", entries[0].Date.ISO(), entries[1].Date.ISO())
	}
}

func TestDeleteMissingTransaction(t *testing.T) {
	s := New()
	ok, err := s.DeleteTransaction(context.Background(), 42)
	if err != nil || ok {
		t.Fatalf("DeleteTransaction(missing) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestAddThenListRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, err := s.AddCategory(ctx, "Renta", core.Fixed)
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	saved, err := s.AddTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 11, 1),
		Amount:      core.Money{Cents: 100000},
		CategoryID:  cat.ID,
		Description: "noviembre",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	entries, err := s.ListMonth(ctx, 11, 2025)
	if err != nil {
		t.Fatalf("ListMonth: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != saved.ID || e.Amount.Cents != 100000 || e.CategoryName != "Renta" || e.Type != core.Fixed {
		t.Fatalf("round trip mismatch: %+v", e)
	}
}
