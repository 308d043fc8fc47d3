package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/core"
)

// ExportData is the backup file format. Purchases keep their original ids
// and timestamps so a restore reproduces the history exactly.
type ExportData struct {
	Purchases  []core.Purchase `json:"purchases"`
	Settings   core.Settings   `json:"settings"`
	ExportedAt string          `json:"exportedAt"`
}

// Export snapshots the full history and settings.
func (s *PurchaseService) Export(ctx context.Context) (ExportData, error) {
	purchases, err := s.storage.ListPurchases(ctx)
	if err != nil {
		return ExportData{}, fmt.Errorf("load history: %w", err)
	}
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return ExportData{}, fmt.Errorf("load settings: %w", err)
	}
	return ExportData{
		Purchases:  purchases,
		Settings:   settings,
		ExportedAt: s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// Import replaces the entire history and settings from a backup. Each
// purchase must carry a positive amount and a date; one bad record rejects
// the whole file so a restore is all-or-nothing. Returns the number of
// purchases imported.
func (s *PurchaseService) Import(ctx context.Context, data ExportData) (int, error) {
	if data.Purchases == nil {
		return 0, fmt.Errorf("%w: missing purchases", core.ErrInvalidCandidate)
	}

	now := s.now()
	cleaned := make([]core.Purchase, 0, len(data.Purchases))
	for i, p := range data.Purchases {
		if err := p.Amount.Validate(); err != nil {
			return 0, fmt.Errorf("purchase %d: %w", i, err)
		}
		if p.Date == "" && p.Timestamp == 0 {
			return 0, fmt.Errorf("purchase %d: %w: missing date", i, core.ErrInvalidCandidate)
		}
		if p.ID == "" {
			p.ID = core.NewID(now)
		}
		if p.Timestamp == 0 {
			p.Timestamp = p.When().UnixMilli()
		}
		if p.Date == "" {
			p.Date = time.UnixMilli(p.Timestamp).UTC().Format(time.RFC3339Nano)
		}
		cleaned = append(cleaned, p)
	}

	if err := s.storage.ReplacePurchases(ctx, cleaned); err != nil {
		return 0, fmt.Errorf("replace history: %w", err)
	}
	if err := s.storage.SaveSettings(ctx, data.Settings); err != nil {
		return 0, fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Backup imported", "purchases", len(cleaned))
	return len(cleaned), nil
}
