// Package memory implements the store port in process memory. It backs
// local development and tests, and enforces the same constraints as the
// relational backends: unique category names and live category references.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gastos/internal/core"
	"gastos/internal/store"
)

type Store struct {
	mu        sync.Mutex
	cats      []core.Category
	txs       []core.Transaction
	nextCatID int64
	nextTxID  int64
}

// Ensure interface conformance
var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextCatID: 1, nextTxID: 1}
}

// NewSeeded creates a store preloaded with categories, for demo setups.
func NewSeeded(cats []core.Category) *Store {
	s := New()
	for _, c := range cats {
		_, _ = s.AddCategory(context.Background(), c.Name, c.Type)
	}
	return s
}

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findCategory(t.CategoryID) == nil {
		return core.Transaction{}, fmt.Errorf("%w: id %d", store.ErrUnknownCategory, t.CategoryID)
	}
	t.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *Store) ListMonth(_ context.Context, month, year int) ([]core.ReportEntry, error) {
	start, end, err := core.MonthRange(month, year)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []core.ReportEntry
	for _, t := range s.txs {
		iso := t.Date.ISO()
		if iso < start.ISO() || iso >= end.ISO() {
			continue
		}
		cat := s.findCategory(t.CategoryID)
		if cat == nil {
			continue
		}
		entries = append(entries, core.ReportEntry{
			ID:           t.ID,
			Date:         t.Date,
			Amount:       t.Amount,
			CategoryName: cat.Name,
			Type:         cat.Type,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date.ISO() != entries[j].Date.ISO() {
			return entries[i].Date.ISO() < entries[j].Date.ISO()
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := append([]core.Category(nil), s.cats...)
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (s *Store) AddCategory(_ context.Context, name string, typ core.ExpenseType) (core.Category, error) {
	cat := core.Category{Name: name, Type: typ}
	if err := cat.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cats {
		if c.Name == name {
			return core.Category{}, fmt.Errorf("%w: %q", store.ErrDuplicateCategory, name)
		}
	}
	cat.ID = s.nextCatID
	s.nextCatID++
	s.cats = append(s.cats, cat)
	return cat, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.txs {
		if t.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) findCategory(id int64) *core.Category {
	for i := range s.cats {
		if s.cats[i].ID == id {
			return &s.cats[i]
		}
	}
	return nil
}
