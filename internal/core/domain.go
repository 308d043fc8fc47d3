package core

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Field caps applied when sanitizing inbound purchase data.
const (
	MaxAmountCents      = 99999900  // 999,999.00
	MaxBudgetCents      = 999999900 // 9,999,999.00
	MaxDescriptionLen   = 200
	MaxCategoryLen      = 50
	MaxPlatformLen      = 50
	MaxCurrencyLen      = 3
	MaxURLLen           = 500
	MaxPageTitleLen     = 200
	MinAlertThreshold   = 50
	MaxAlertThreshold   = 100
	FallbackDescription = "Unnamed purchase"
)

type (
	Period string

	// Money is an amount in cents. JSON encodes as a decimal number with
	// two fractional digits to match the export file format.
	Money struct {
		Cents int64
	}

	// PurchaseCandidate is an extracted-but-not-yet-persisted purchase
	// proposal. Produced by the extractor or submitted manually.
	PurchaseCandidate struct {
		Amount      Money  `json:"amount"`
		Currency    string `json:"currency"`
		Platform    string `json:"platform"`
		Description string `json:"description"`
		Category    string `json:"category"`
		URL         string `json:"url"`
		PageTitle   string `json:"pageTitle"`
	}

	// Purchase is a persisted record. Immutable once created, except for
	// deletion by id.
	Purchase struct {
		ID          string `json:"id"`
		Amount      Money  `json:"amount"`
		Currency    string `json:"currency"`
		Platform    string `json:"platform"`
		Description string `json:"description"`
		Category    string `json:"category"`
		URL         string `json:"url"`
		PageTitle   string `json:"pageTitle"`
		Timestamp   int64  `json:"timestamp"` // epoch millis at save time
		Date        string `json:"date"`      // ISO-8601 at save time
	}

	// Settings is the singleton configuration record. Reads always return
	// a fully populated record; writes are clamped, never rejected.
	Settings struct {
		BudgetAmount         Money  `json:"budgetAmount"`
		BudgetPeriod         Period `json:"budgetPeriod"`
		AlertThreshold       int    `json:"alertThreshold"`
		NotificationsEnabled bool   `json:"notificationsEnabled"`
		Currency             string `json:"currency"`
		TrackingEnabled      bool   `json:"trackingEnabled"`
	}

	// BudgetStatus is derived on demand and never persisted.
	BudgetStatus struct {
		Budget       Money  `json:"budget"`
		Spent        Money  `json:"spent"`
		Remaining    Money  `json:"remaining"`
		Percentage   int    `json:"percentage"`
		Period       Period `json:"period"`
		Count        int    `json:"count"`
		IsOverBudget bool   `json:"isOverBudget"`
		IsNearLimit  bool   `json:"isNearLimit"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCandidate = errors.New("invalid purchase candidate")
)

// DefaultSettings mirrors the values applied on first install.
func DefaultSettings() Settings {
	return Settings{
		BudgetAmount:         Money{Cents: 50000},
		BudgetPeriod:         Monthly,
		AlertThreshold:       80,
		NotificationsEnabled: true,
		Currency:             "USD",
		TrackingEnabled:      true,
	}
}

// DefaultCategories is the fixed starter category set. User additions are
// appended after these.
func DefaultCategories() []string {
	return []string{
		"Electronics",
		"Clothing",
		"Home & Garden",
		"Books",
		"Food & Grocery",
		"Health & Beauty",
		"Sports & Outdoors",
		"Toys & Games",
		"Auto & Parts",
		"Other",
	}
}

// ValidPeriod reports whether p is one of the three supported periods.
func ValidPeriod(p Period) bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float(), 'f', 2, 64)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return ErrInvalidAmount
	}
	m.Cents = roundToCents(v)
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Sanitize normalizes a candidate in place, applying length caps and
// fallback values, and validates the amount. The returned error is
// ErrInvalidAmount when the amount is non-positive or above the sanity
// ceiling; everything else is repaired rather than rejected.
func (c *PurchaseCandidate) Sanitize() error {
	if err := c.Amount.Validate(); err != nil {
		return err
	}

	c.Description = truncate(strings.TrimSpace(c.Description), MaxDescriptionLen)
	if c.Description == "" {
		c.Description = FallbackDescription
	}

	c.Category = truncate(strings.TrimSpace(c.Category), MaxCategoryLen)
	if c.Category == "" {
		c.Category = "Other"
	}

	c.Platform = truncate(strings.TrimSpace(c.Platform), MaxPlatformLen)
	if c.Platform == "" {
		c.Platform = "Manual"
	}

	c.Currency = truncate(strings.TrimSpace(c.Currency), MaxCurrencyLen)
	if c.Currency == "" {
		c.Currency = "$"
	}

	c.URL = truncate(c.URL, MaxURLLen)
	c.PageTitle = truncate(c.PageTitle, MaxPageTitleLen)
	return nil
}

// SanitizeCategoryName trims and caps a user-supplied category name.
func SanitizeCategoryName(name string) string {
	return truncate(strings.TrimSpace(name), MaxCategoryLen)
}

// NewPurchase stamps a sanitized candidate into a persisted record with a
// fresh id, epoch-millis timestamp, and ISO-8601 date.
func NewPurchase(c PurchaseCandidate, now time.Time) (Purchase, error) {
	if err := c.Sanitize(); err != nil {
		return Purchase{}, err
	}
	return Purchase{
		ID:          NewID(now),
		Amount:      c.Amount,
		Currency:    c.Currency,
		Platform:    c.Platform,
		Description: c.Description,
		Category:    c.Category,
		URL:         c.URL,
		PageTitle:   c.PageTitle,
		Timestamp:   now.UnixMilli(),
		Date:        now.UTC().Format(time.RFC3339Nano),
	}, nil
}

// NewID builds a purchase id from a base36 millisecond prefix and a short
// random suffix. Collisions are treated as negligible, not impossible; the
// store enforces uniqueness.
func NewID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 5)
	max := big.NewInt(int64(len(alphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure leaves the time prefix as the only
			// entropy; acceptable for a local single-writer store.
			suffix[i] = alphabet[0]
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + string(suffix)
}

// When returns the instant a purchase was recorded, preferring the ISO date
// and falling back to the millisecond timestamp for records imported from
// older exports.
func (p Purchase) When() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, p.Date); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, p.Date); err == nil {
		return t
	}
	return time.UnixMilli(p.Timestamp)
}

// Sanitize clamps every settings field into range. Out-of-range values are
// repaired so a settings record is always well-formed.
func (s Settings) Sanitize() Settings {
	out := s
	if out.BudgetAmount.Cents < 0 {
		out.BudgetAmount.Cents = 0
	}
	if out.BudgetAmount.Cents > MaxBudgetCents {
		out.BudgetAmount.Cents = MaxBudgetCents
	}
	if !ValidPeriod(out.BudgetPeriod) {
		out.BudgetPeriod = Monthly
	}
	if out.AlertThreshold < MinAlertThreshold {
		out.AlertThreshold = MinAlertThreshold
	}
	if out.AlertThreshold > MaxAlertThreshold {
		out.AlertThreshold = MaxAlertThreshold
	}
	out.Currency = truncate(strings.TrimSpace(out.Currency), MaxCurrencyLen)
	if out.Currency == "" {
		out.Currency = "USD"
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary so truncation never produces invalid UTF-8.
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
