// Package sqlite implements the store port on a local SQLite database,
// mirroring the hosted backend's schema so the two are interchangeable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gastos/internal/core"
	"gastos/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// dsn appends the foreign_keys pragma so every pooled connection
// enforces the transaction to category reference, not just the first.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)"
}

// Ensure interface conformance
var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transacciones (fecha, monto_cents, id_categoria, descripcion) VALUES (?, ?, ?, ?)`,
		t.Date.ISO(), t.Amount.Cents, t.CategoryID, t.Description)
	if err != nil {
		if isForeignKeyErr(err) {
			return core.Transaction{}, fmt.Errorf("%w: id %d", store.ErrUnknownCategory, t.CategoryID)
		}
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"date", t.Date.ISO(),
		"amount_cents", t.Amount.Cents,
		"category_id", t.CategoryID)

	out := t
	out.ID = id
	return out, nil
}

// ListMonth performs locally the join the hosted aggregation routine does
// server-side.
func (r *Repository) ListMonth(ctx context.Context, month, year int) ([]core.ReportEntry, error) {
	start, end, err := core.MonthRange(month, year)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.fecha, t.monto_cents, c.nombre, c.tipo_gasto
		 FROM transacciones t
		 JOIN categorias c ON c.id = t.id_categoria
		 WHERE t.fecha >= ? AND t.fecha < ?
		 ORDER BY t.fecha, t.id`,
		start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("query month transactions: %w", err)
	}
	defer rows.Close()

	var entries []core.ReportEntry
	for rows.Next() {
		var (
			e     core.ReportEntry
			fecha string
			typ   string
		)
		if err := rows.Scan(&e.ID, &fecha, &e.Amount.Cents, &e.CategoryName, &typ); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		if e.Date, err = core.ParseISODate(fecha); err != nil {
			return nil, fmt.Errorf("row %d: %w", e.ID, err)
		}
		e.Type = core.ExpenseType(typ)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return entries, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nombre, tipo_gasto FROM categorias ORDER BY nombre ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c   core.Category
			typ string
		)
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.ExpenseType(typ)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

func (r *Repository) AddCategory(ctx context.Context, name string, typ core.ExpenseType) (core.Category, error) {
	cat := core.Category{Name: name, Type: typ}
	if err := cat.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categorias (nombre, tipo_gasto) VALUES (?, ?)`,
		name, string(typ))
	if err != nil {
		if isUniqueErr(err) {
			return core.Category{}, fmt.Errorf("%w: %q", store.ErrDuplicateCategory, name)
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", id, "name", name, "type", string(typ))

	cat.ID = id
	return cat, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transacciones WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func isUniqueErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
