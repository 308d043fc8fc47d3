// Package worker consumes purchase-logged events and turns them into user
// notifications and ledger rows. It also runs the periodic budget check and
// the daily spending summary.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/amqp"
	"spendwatch/internal/core"
	"spendwatch/internal/ledger"
	applog "spendwatch/internal/log"
	"spendwatch/internal/notify"
)

// Store is the read surface the worker needs. Implemented by
// storage.SQLiteRepository.
type Store interface {
	GetPurchase(ctx context.Context, id string) (core.Purchase, error)
	ListPurchases(ctx context.Context) ([]core.Purchase, error)
	GetSettings(ctx context.Context) (core.Settings, error)
}

// NotifyWorker handles purchase-logged messages from AMQP.
type NotifyWorker struct {
	storage    Store
	ledger     ledger.PurchaseWriter
	dispatcher *notify.Dispatcher

	now func() time.Time
}

func NewNotifyWorker(storage Store, writer ledger.PurchaseWriter, dispatcher *notify.Dispatcher) *NotifyWorker {
	return &NotifyWorker{
		storage:    storage,
		ledger:     writer,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// HandlePurchaseLogged processes a single purchase-logged message: notify
// the user, mirror the row into the ledger, then re-evaluate the budget.
// A returned error requeues the message.
func (w *NotifyWorker) HandlePurchaseLogged(ctx context.Context, msg *amqp.PurchaseLoggedMessage) error {
	slog.InfoContext(ctx, "Processing purchase logged message",
		"id", msg.ID,
		"manual", msg.Manual)

	purchase, err := w.storage.GetPurchase(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get purchase from storage: %w", err)
	}

	settings, err := w.storage.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	if settings.NotificationsEnabled {
		w.dispatcher.Dispatch(ctx, notify.PurchaseLoggedID(purchase), notify.PurchaseLogged(purchase))
	}

	if err := w.mirrorToLedger(ctx, purchase); err != nil {
		return err
	}

	// Every accepted purchase can tip the budget over a threshold.
	if err := w.CheckBudget(ctx); err != nil {
		slog.ErrorContext(ctx, "Budget check after purchase failed", "error", err)
		// The purchase itself was handled; don't requeue for this.
	}

	return nil
}

func (w *NotifyWorker) mirrorToLedger(ctx context.Context, p core.Purchase) error {
	if w.ledger == nil {
		slog.WarnContext(ctx, "No ledger configured, skipping mirror", "id", p.ID)
		return nil
	}

	ref, err := w.ledger.Append(ctx, p)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	fields := applog.NewFields().
		WithPurchase(p.ID, p.Platform, p.Category, p.Amount.Cents).
		WithOperation(applog.OpMirror).
		WithComponent(applog.ComponentWorker).
		With(applog.FieldLedgerRef, ref)
	slog.InfoContext(ctx, "Purchase mirrored to ledger", fields.ToSlice()...)
	return nil
}

// CheckBudget evaluates the configured budget and raises the exceeded or
// near-limit alert when warranted. Alerts replace their previous instance,
// so repeated checks do not stack notifications.
func (w *NotifyWorker) CheckBudget(ctx context.Context) error {
	settings, err := w.storage.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if !settings.NotificationsEnabled || settings.BudgetAmount.Cents == 0 {
		return nil
	}

	history, err := w.storage.ListPurchases(ctx)
	if err != nil {
		return fmt.Errorf("list purchases: %w", err)
	}

	spending := core.SpendingForPeriod(history, settings.BudgetPeriod, w.now())
	status := core.EvaluateBudget(settings, spending)
	symbol := core.DetectCurrencySymbol(settings.Currency)

	switch {
	case status.IsOverBudget:
		w.dispatcher.Dispatch(ctx, notify.IDBudgetExceeded, notify.BudgetExceeded(status, symbol))
	case status.IsNearLimit:
		w.dispatcher.Dispatch(ctx, notify.IDBudgetWarning, notify.BudgetWarning(status, symbol))
	}

	return nil
}

// SendDailySummary raises the end-of-day rollup. Days with no purchases
// stay silent.
func (w *NotifyWorker) SendDailySummary(ctx context.Context) error {
	settings, err := w.storage.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		return nil
	}

	history, err := w.storage.ListPurchases(ctx)
	if err != nil {
		return fmt.Errorf("list purchases: %w", err)
	}

	now := w.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total core.Money
	count := 0
	for _, p := range history {
		when := p.When().In(now.Location())
		if when.Before(dayStart) || when.After(now) {
			continue
		}
		total.Cents += p.Amount.Cents
		count++
	}

	if count == 0 {
		slog.InfoContext(ctx, "No purchases today, skipping daily summary")
		return nil
	}

	symbol := core.DetectCurrencySymbol(settings.Currency)
	w.dispatcher.Dispatch(ctx, notify.IDDailySummary, notify.DailySummary(count, total, symbol))
	return nil
}
