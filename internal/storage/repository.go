// Package storage persists purchases, settings, and categories in SQLite.
// The repository owns all SQL; callers deal only in core types. Writes are
// durable once the call returns.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendwatch/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a purchase id does not exist.
var ErrNotFound = errors.New("purchase not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertPurchase stores an already stamped purchase record.
func (r *SQLiteRepository) InsertPurchase(ctx context.Context, p core.Purchase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchases
			(id, amount_cents, currency, platform, description, category, url, page_title, timestamp_ms, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Amount.Cents, p.Currency, p.Platform, p.Description,
		p.Category, p.URL, p.PageTitle, p.Timestamp, p.Date)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	slog.InfoContext(ctx, "Purchase saved",
		"id", p.ID,
		"platform", p.Platform,
		"amount_cents", p.Amount.Cents,
		"category", p.Category)
	return nil
}

// ListPurchases returns the full history, newest first.
func (r *SQLiteRepository) ListPurchases(ctx context.Context) ([]core.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, currency, platform, description, category, url, page_title, timestamp_ms, date
		FROM purchases
		ORDER BY timestamp_ms DESC`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []core.Purchase{}
	for rows.Next() {
		var p core.Purchase
		if err := rows.Scan(&p.ID, &p.Amount.Cents, &p.Currency, &p.Platform,
			&p.Description, &p.Category, &p.URL, &p.PageTitle, &p.Timestamp, &p.Date); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, nil
}

// GetPurchase retrieves a single record by id.
func (r *SQLiteRepository) GetPurchase(ctx context.Context, id string) (core.Purchase, error) {
	var p core.Purchase
	err := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, currency, platform, description, category, url, page_title, timestamp_ms, date
		FROM purchases WHERE id = ?`, id).
		Scan(&p.ID, &p.Amount.Cents, &p.Currency, &p.Platform, &p.Description,
			&p.Category, &p.URL, &p.PageTitle, &p.Timestamp, &p.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Purchase{}, ErrNotFound
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// DeletePurchase removes a record by id.
func (r *SQLiteRepository) DeletePurchase(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete purchase rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Purchase deleted", "id", id)
	return nil
}

// ReplacePurchases swaps the entire history atomically. Used by import; a
// failure anywhere leaves the store unchanged.
func (r *SQLiteRepository) ReplacePurchases(ctx context.Context, purchases []core.Purchase) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM purchases`); err != nil {
		return fmt.Errorf("clear purchases: %w", err)
	}
	for _, p := range purchases {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchases
				(id, amount_cents, currency, platform, description, category, url, page_title, timestamp_ms, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Amount.Cents, p.Currency, p.Platform, p.Description,
			p.Category, p.URL, p.PageTitle, p.Timestamp, p.Date); err != nil {
			return fmt.Errorf("insert imported purchase %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Purchase history replaced", "count", len(purchases))
	return nil
}

// GetSettings returns the settings record, substituting defaults when no
// row exists yet. The result is always fully populated.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	var (
		s                     core.Settings
		notifications, tracking int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT budget_cents, budget_period, alert_threshold, notifications_enabled, currency, tracking_enabled
		FROM settings WHERE id = 1`).
		Scan(&s.BudgetAmount.Cents, &s.BudgetPeriod, &s.AlertThreshold, &notifications, &s.Currency, &tracking)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	s.NotificationsEnabled = notifications != 0
	s.TrackingEnabled = tracking != 0
	return s.Sanitize(), nil
}

// SaveSettings clamps and upserts the singleton settings row.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	s = s.Sanitize()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, budget_cents, budget_period, alert_threshold, notifications_enabled, currency, tracking_enabled)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			budget_cents = excluded.budget_cents,
			budget_period = excluded.budget_period,
			alert_threshold = excluded.alert_threshold,
			notifications_enabled = excluded.notifications_enabled,
			currency = excluded.currency,
			tracking_enabled = excluded.tracking_enabled`,
		s.BudgetAmount.Cents, string(s.BudgetPeriod), s.AlertThreshold,
		boolToInt(s.NotificationsEnabled), s.Currency, boolToInt(s.TrackingEnabled))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings saved",
		"budget_cents", s.BudgetAmount.Cents,
		"period", s.BudgetPeriod,
		"threshold", s.AlertThreshold)
	return nil
}

// GetCategories returns the category set in insertion order. The defaults
// are seeded by migration.
func (r *SQLiteRepository) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// AddCategory appends a category. Re-adding an existing name is a no-op,
// which is the only uniqueness guarantee the set makes.
func (r *SQLiteRepository) AddCategory(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
