// Package ledger is the data-access module both front ends share. It wraps
// a store backend and flattens its errors into the surface the front ends
// consume: booleans for transaction writes, empty lists for reads, and a
// real error only for category creation. The underlying cause is always
// logged, so operators can tell a failed query from an empty month even
// though callers cannot.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/store"
)

// ErrIncompleteData is returned by AddCategory before any store call when
// the name or the expense type is missing.
var ErrIncompleteData = errors.New("incomplete data")

// EventPublisher is the optional outbound side of the ledger. Publish
// failures never fail the user action.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error
}

type Service struct {
	store  store.Store
	events EventPublisher
}

// New creates a ledger over the given store. events may be nil.
func New(st store.Store, events EventPublisher) *Service {
	return &Service{store: st, events: events}
}

// AddTransaction records one expense. It reports success or failure only;
// the failure cause is logged, not returned.
func (s *Service) AddTransaction(ctx context.Context, date core.Date, amount core.Money, categoryID int64, description string) bool {
	t := core.Transaction{
		Date:        date,
		Amount:      amount,
		CategoryID:  categoryID,
		Description: description,
	}
	saved, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction insert failed",
			"date", date.ISO(),
			"amount_cents", amount.Cents,
			"category_id", categoryID,
			"error", err)
		return false
	}

	slog.InfoContext(ctx, "Transaction recorded", "id", saved.ID, "amount_cents", amount.Cents)
	s.publish(ctx, amqp.NewTransactionCreated(saved.ID, saved.Date.ISO(), saved.Amount.Cents, saved.CategoryID))
	return true
}

// ListMonth returns the report rows for a month. A failed query yields an
// empty list, indistinguishable from a month with no transactions.
func (s *Service) ListMonth(ctx context.Context, month, year int) []core.ReportEntry {
	entries, err := s.store.ListMonth(ctx, month, year)
	if err != nil {
		slog.ErrorContext(ctx, "Month listing failed", "month", month, "year", year, "error", err)
		return nil
	}
	return entries
}

// ListCategories returns all categories ordered by name, or an empty list
// on failure.
func (s *Service) ListCategories(ctx context.Context) []core.Category {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Category listing failed", "error", err)
		return nil
	}
	return cats
}

// AddCategory validates its inputs before touching the store, then creates
// the category. Unlike the transaction operations, the store's error is
// returned to the caller so the form can show why the insert failed.
func (s *Service) AddCategory(ctx context.Context, name string, typ core.ExpenseType) (*core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(string(typ)) == "" {
		return nil, ErrIncompleteData
	}

	cat, err := s.store.AddCategory(ctx, name, typ)
	if err != nil {
		slog.ErrorContext(ctx, "Category insert failed", "name", name, "type", string(typ), "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Category created", "id", cat.ID, "name", cat.Name, "type", string(cat.Type))
	return &cat, nil
}

// DeleteTransaction removes a transaction by id, reporting success only.
// Deleting an id that does not exist reports false.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) bool {
	ok, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction delete failed", "id", id, "error", err)
		return false
	}
	if !ok {
		slog.WarnContext(ctx, "Transaction delete matched no row", "id", id)
		return false
	}

	s.publish(ctx, amqp.NewTransactionDeleted(id))
	return true
}

func (s *Service) publish(ctx context.Context, msg *amqp.TransactionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", msg.Action, "id", msg.ID, "error", err)
	}
}
