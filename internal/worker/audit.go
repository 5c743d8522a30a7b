// Package worker implements the audit worker: it consumes transaction
// events and writes a structured audit trail, and periodically logs a
// summary snapshot of the current month.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/core"
	applog "gastos/internal/log"
)

// Reporter reads the month report the snapshots are computed from.
type Reporter interface {
	ListMonth(ctx context.Context, month, year int) []core.ReportEntry
}

// AuditWorker turns transaction events into audit log entries and
// periodically recomputes the running month's totals.
type AuditWorker struct {
	reporter Reporter
	interval time.Duration
}

func NewAuditWorker(reporter Reporter, interval time.Duration) *AuditWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AuditWorker{
		reporter: reporter,
		interval: interval,
	}
}

// HandleEvent processes a single transaction event. An unknown action is
// an error so the consumer can reject the message instead of acking it.
func (w *AuditWorker) HandleEvent(msg *amqp.TransactionEvent) error {
	switch msg.Action {
	case amqp.ActionCreated:
		slog.Info("Transaction recorded",
			applog.FieldOperation, msg.Action,
			applog.FieldTxID, msg.ID,
			"date", msg.Date,
			applog.FieldAmountCents, msg.AmountCents,
			applog.FieldCategory, msg.CategoryID,
			"emitted_at", msg.Timestamp)
	case amqp.ActionDeleted:
		slog.Info("Transaction removed",
			applog.FieldOperation, msg.Action,
			applog.FieldTxID, msg.ID,
			"emitted_at", msg.Timestamp)
	default:
		return fmt.Errorf("unknown event action: %q", msg.Action)
	}
	return nil
}

// SnapshotMonth recomputes and logs the current month's totals.
func (w *AuditWorker) SnapshotMonth(ctx context.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	entries := w.reporter.ListMonth(ctx, month, year)
	summary := core.Summarize(entries)

	slog.InfoContext(ctx, "Month summary snapshot",
		applog.FieldYear, year,
		applog.FieldMonth, month,
		"transactions", len(entries),
		"total_cents", summary.Total.Cents,
		"fixed_cents", summary.Fixed.Cents,
		"variable_cents", summary.Variable.Cents)
}

// ConsumeFunc feeds events into a handler until the context is done.
// amqp.ConsumeWithReconnect, partially applied, satisfies it.
type ConsumeFunc func(ctx context.Context, handler func(*amqp.TransactionEvent) error) error

// Run consumes events and snapshots the month until ctx is cancelled.
// consume may be nil when no broker is configured; snapshots still run.
func (w *AuditWorker) Run(ctx context.Context, consume ConsumeFunc) error {
	g, ctx := errgroup.WithContext(ctx)

	if consume != nil {
		g.Go(func() error {
			return consume(ctx, w.HandleEvent)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.SnapshotMonth(ctx)
		for {
			select {
			case <-ticker.C:
				w.SnapshotMonth(ctx)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return g.Wait()
}
