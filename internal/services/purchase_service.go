// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/core"
	applog "spendwatch/internal/log"
)

// Rejection reasons reported when a detected purchase is not saved.
const (
	ReasonTrackingDisabled = "tracking_disabled"
	ReasonDuplicate        = "duplicate"
)

// Repository is the storage surface the service needs. Implemented by
// storage.SQLiteRepository.
type Repository interface {
	InsertPurchase(ctx context.Context, p core.Purchase) error
	ListPurchases(ctx context.Context) ([]core.Purchase, error)
	GetPurchase(ctx context.Context, id string) (core.Purchase, error)
	DeletePurchase(ctx context.Context, id string) error
	ReplacePurchases(ctx context.Context, purchases []core.Purchase) error
	GetSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
	GetCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) error
	Close() error
}

// Publisher emits purchase-logged events. Implemented by amqp.Client.
type Publisher interface {
	PublishPurchaseLogged(ctx context.Context, id string, manual bool) error
}

// SubmitResult reports what became of a detected purchase.
type SubmitResult struct {
	Saved    bool          `json:"saved"`
	Reason   string        `json:"reason,omitempty"`
	Purchase core.Purchase `json:"purchase,omitempty"`
}

// PurchaseService orchestrates purchase operations across SQLite and AMQP.
type PurchaseService struct {
	storage   Repository
	publisher Publisher

	now func() time.Time
}

func NewPurchaseService(storage Repository, publisher Publisher) *PurchaseService {
	return &PurchaseService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit runs a detected purchase through the full acceptance pipeline:
// tracking gate, sanitization, duplicate suppression, persistence, event
// publish. A publish failure never fails the save.
func (s *PurchaseService) Submit(ctx context.Context, candidate core.PurchaseCandidate) (SubmitResult, error) {
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load settings: %w", err)
	}
	if !settings.TrackingEnabled {
		slog.InfoContext(ctx, "Purchase ignored, tracking disabled", "platform", candidate.Platform)
		return SubmitResult{Reason: ReasonTrackingDisabled}, nil
	}

	if err := candidate.Sanitize(); err != nil {
		return SubmitResult{}, fmt.Errorf("sanitize candidate: %w", err)
	}

	history, err := s.storage.ListPurchases(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load history: %w", err)
	}

	now := s.now()
	if core.IsDuplicate(candidate, history, now) {
		slog.InfoContext(ctx, "Duplicate purchase suppressed",
			"platform", candidate.Platform,
			"amount_cents", candidate.Amount.Cents)
		return SubmitResult{Reason: ReasonDuplicate}, nil
	}

	purchase, err := core.NewPurchase(candidate, now)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("stamp purchase: %w", err)
	}
	if err := s.storage.InsertPurchase(ctx, purchase); err != nil {
		return SubmitResult{}, fmt.Errorf("save purchase: %w", err)
	}

	s.logRecorded(ctx, purchase)
	s.publishLogged(ctx, purchase.ID, false)

	return SubmitResult{Saved: true, Purchase: purchase}, nil
}

// AddManual records a user-entered purchase. Manual entries skip the
// tracking gate and duplicate suppression; the user said it happened.
func (s *PurchaseService) AddManual(ctx context.Context, candidate core.PurchaseCandidate) (core.Purchase, error) {
	if err := candidate.Sanitize(); err != nil {
		return core.Purchase{}, fmt.Errorf("sanitize candidate: %w", err)
	}

	purchase, err := core.NewPurchase(candidate, s.now())
	if err != nil {
		return core.Purchase{}, fmt.Errorf("stamp purchase: %w", err)
	}
	if err := s.storage.InsertPurchase(ctx, purchase); err != nil {
		return core.Purchase{}, fmt.Errorf("save purchase: %w", err)
	}

	s.logRecorded(ctx, purchase)
	s.publishLogged(ctx, purchase.ID, true)

	return purchase, nil
}

func (s *PurchaseService) logRecorded(ctx context.Context, p core.Purchase) {
	fields := applog.NewFields().
		WithPurchase(p.ID, p.Platform, p.Category, p.Amount.Cents).
		WithOperation(applog.OpCreate).
		WithComponent(applog.ComponentPurchase)
	slog.InfoContext(ctx, "Purchase recorded", fields.ToSlice()...)
}

func (s *PurchaseService) publishLogged(ctx context.Context, id string, manual bool) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping purchase logged message")
		return
	}
	if err := s.publisher.PublishPurchaseLogged(ctx, id, manual); err != nil {
		slog.ErrorContext(ctx, "Failed to publish purchase logged message",
			"id", id, "error", err)
		// Don't fail the request, the purchase is saved locally.
	}
}

// Purchases returns the full history, newest first.
func (s *PurchaseService) Purchases(ctx context.Context) ([]core.Purchase, error) {
	return s.storage.ListPurchases(ctx)
}

// Purchase returns a single record by id.
func (s *PurchaseService) Purchase(ctx context.Context, id string) (core.Purchase, error) {
	return s.storage.GetPurchase(ctx, id)
}

// Delete removes a purchase by id.
func (s *PurchaseService) Delete(ctx context.Context, id string) error {
	return s.storage.DeletePurchase(ctx, id)
}

// Spending aggregates history over the current period window.
func (s *PurchaseService) Spending(ctx context.Context, period core.Period) (core.Spending, error) {
	history, err := s.storage.ListPurchases(ctx)
	if err != nil {
		return core.Spending{}, fmt.Errorf("load history: %w", err)
	}
	return core.SpendingForPeriod(history, period, s.now()), nil
}

// SpendingByCategory breaks the current period down per category.
func (s *PurchaseService) SpendingByCategory(ctx context.Context, period core.Period) ([]core.CategorySpending, error) {
	history, err := s.storage.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return core.SpendingByCategory(history, period, s.now()), nil
}

// WeeklyComparison returns per-week totals for the trailing weeks,
// oldest first.
func (s *PurchaseService) WeeklyComparison(ctx context.Context, weeks int) ([]core.WeekSummary, error) {
	history, err := s.storage.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return core.WeeklyComparison(history, weeks, s.now()), nil
}

// BudgetStatus evaluates the configured budget against current spending.
func (s *PurchaseService) BudgetStatus(ctx context.Context) (core.BudgetStatus, error) {
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("load settings: %w", err)
	}

	spending, err := s.Spending(ctx, settings.BudgetPeriod)
	if err != nil {
		return core.BudgetStatus{}, err
	}

	return core.EvaluateBudget(settings, spending), nil
}

// Settings returns the current settings, fully populated.
func (s *PurchaseService) Settings(ctx context.Context) (core.Settings, error) {
	return s.storage.GetSettings(ctx)
}

// SaveSettings clamps and persists settings.
func (s *PurchaseService) SaveSettings(ctx context.Context, settings core.Settings) error {
	return s.storage.SaveSettings(ctx, settings)
}

// Categories returns the category set in insertion order.
func (s *PurchaseService) Categories(ctx context.Context) ([]string, error) {
	return s.storage.GetCategories(ctx)
}

// AddCategory appends a category name if it is not already present.
func (s *PurchaseService) AddCategory(ctx context.Context, name string) error {
	name = core.SanitizeCategoryName(name)
	if name == "" {
		return fmt.Errorf("category name is empty")
	}
	return s.storage.AddCategory(ctx, name)
}

// Close closes both storage and AMQP connections.
func (s *PurchaseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close purchase service: %v", errs)
	}

	return nil
}
