// Package store defines the persistence contract shared by every backend.
package store

import (
	"context"
	"errors"

	"gastos/internal/core"
)

var (
	// ErrDuplicateCategory reports a violation of the category name
	// uniqueness constraint.
	ErrDuplicateCategory = errors.New("duplicate category name")

	// ErrUnknownCategory reports a transaction referencing a category that
	// does not exist.
	ErrUnknownCategory = errors.New("unknown category")

	ErrNotFound = errors.New("not found")
)

// Store is the port implemented by the hosted backend client and by the
// local sqlite and memory backends. Every operation is a synchronous call
// against the system of record; errors carry the real cause, and upper
// layers decide how much of it to expose.
type Store interface {
	// AddTransaction inserts one transaction; the store assigns the ID.
	AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)

	// ListMonth returns the denormalized report rows for the half-open
	// range [first day of month, first day of next month).
	ListMonth(ctx context.Context, month, year int) ([]core.ReportEntry, error)

	// ListCategories returns all categories ordered by name ascending.
	ListCategories(ctx context.Context) ([]core.Category, error)

	// AddCategory inserts a category; duplicate names fail with an error
	// wrapping ErrDuplicateCategory.
	AddCategory(ctx context.Context, name string, typ core.ExpenseType) (core.Category, error)

	// DeleteTransaction removes the transaction with the given id. The
	// bool reports whether a row was actually removed; deleting an id that
	// does not exist returns (false, nil).
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
}
