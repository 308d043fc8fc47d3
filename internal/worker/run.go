package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwatch/internal/amqp"
)

// RunConfig controls the worker's periodic duties.
type RunConfig struct {
	// BudgetCheckInterval is how often the budget is re-evaluated even
	// without new purchases.
	BudgetCheckInterval time.Duration

	// SummaryHour is the local hour (0-23) at which the daily summary
	// fires.
	SummaryHour int
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		BudgetCheckInterval: time.Hour,
		SummaryHour:         21,
	}
}

// Run drives the worker until the context ends: one goroutine consumes
// purchase-logged messages, one re-checks the budget on an interval, one
// fires the daily summary. The first hard failure stops all three.
func (w *NotifyWorker) Run(ctx context.Context, client *amqp.Client, cfg RunConfig) error {
	if cfg.BudgetCheckInterval <= 0 {
		cfg.BudgetCheckInterval = time.Hour
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.ConsumePurchaseLogged(ctx, func(msg *amqp.PurchaseLoggedMessage) error {
			return w.HandlePurchaseLogged(ctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.BudgetCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.CheckBudget(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic budget check failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		for {
			wait := untilNextHour(w.now(), cfg.SummaryHour)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
				if err := w.SendDailySummary(ctx); err != nil {
					slog.ErrorContext(ctx, "Daily summary failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// untilNextHour returns the duration until the next local occurrence of
// hour. Always positive so the summary never fires twice in one day.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
