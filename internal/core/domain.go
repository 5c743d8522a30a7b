package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Expense type values as stored by the backend in tipo_gasto.
const (
	Fixed    ExpenseType = "Fijo"
	Variable ExpenseType = "Variable"
)

type (
	// ExpenseType classifies a category as a fixed or variable expense.
	ExpenseType string

	// Date is a civil date without time-of-day or location.
	Date struct {
		Year  int
		Month int // 1-12
		Day   int
	}

	Money struct {
		Cents int64
	}

	// Category is a user-defined label for transactions.
	Category struct {
		ID   int64
		Name string
		Type ExpenseType
	}

	// Transaction is a single recorded expense against a category.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		CategoryID  int64
		Description string
	}

	// ReportEntry is a denormalized month-report row: a transaction joined
	// with its category's name and expense type at read time.
	ReportEntry struct {
		ID           int64
		Date         Date
		Amount       Money
		CategoryName string
		Type         ExpenseType
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty category name")
	ErrEmptyType       = errors.New("empty expense type")
	ErrInvalidCategory = errors.New("invalid category reference")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the current date in the local time zone.
func Today() Date {
	now := time.Now()
	return Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
}

// ParseISODate parses a "YYYY-MM-DD" string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ISO renders the date as "YYYY-MM-DD", the format the backend stores.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidMonth
	}
	if d.Day < 1 || d.Day > 31 {
		return ErrInvalidDate
	}
	// Round-trip through time.Date to reject day overflow (e.g. Feb 30).
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != d.Day || int(t.Month()) != d.Month {
		return ErrInvalidDate
	}
	return nil
}

// MonthRange returns the half-open range [first day of month, first day of
// next month) used by every month query. December rolls over into January
// of the following year.
func MonthRange(month, year int) (Date, Date, error) {
	if month < 1 || month > 12 {
		return Date{}, Date{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	start := Date{Year: year, Month: month, Day: 1}
	end := Date{Year: year, Month: month + 1, Day: 1}
	if month == 12 {
		end = Date{Year: year + 1, Month: 1, Day: 1}
	}
	return start, end, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(string(c.Type)) == "" {
		return ErrEmptyType
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
