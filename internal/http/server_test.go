package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendwatch/internal/core"
	"spendwatch/internal/services"
	"spendwatch/internal/storage"
)

type memRepo struct {
	purchases  []core.Purchase
	settings   core.Settings
	categories []string
}

func newMemRepo() *memRepo {
	return &memRepo{settings: core.DefaultSettings(), categories: core.DefaultCategories()}
}

func (m *memRepo) InsertPurchase(_ context.Context, p core.Purchase) error {
	m.purchases = append([]core.Purchase{p}, m.purchases...)
	return nil
}

func (m *memRepo) ListPurchases(context.Context) ([]core.Purchase, error) {
	return m.purchases, nil
}

func (m *memRepo) GetPurchase(_ context.Context, id string) (core.Purchase, error) {
	for _, p := range m.purchases {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Purchase{}, storage.ErrNotFound
}

func (m *memRepo) DeletePurchase(_ context.Context, id string) error {
	for i, p := range m.purchases {
		if p.ID == id {
			m.purchases = append(m.purchases[:i], m.purchases[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memRepo) ReplacePurchases(_ context.Context, purchases []core.Purchase) error {
	m.purchases = purchases
	return nil
}

func (m *memRepo) GetSettings(context.Context) (core.Settings, error) {
	return m.settings.Sanitize(), nil
}

func (m *memRepo) SaveSettings(_ context.Context, s core.Settings) error {
	m.settings = s.Sanitize()
	return nil
}

func (m *memRepo) GetCategories(context.Context) ([]string, error) {
	return m.categories, nil
}

func (m *memRepo) AddCategory(_ context.Context, name string) error {
	for _, c := range m.categories {
		if c == name {
			return nil
		}
	}
	m.categories = append(m.categories, name)
	return nil
}

func (m *memRepo) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	srv := NewServer(":0", services.NewPurchaseService(repo, nil))
	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return srv, repo
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestPlatformEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/platform?url=https://www.amazon.com/gp/buy/spc/handlers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[platformResponse](t, rec)
	if !resp.Supported || !resp.OrderPage {
		t.Errorf("supported = %v, orderPage = %v, want both true", resp.Supported, resp.OrderPage)
	}
	if resp.Platform == nil || resp.Platform.Name != "Amazon" {
		t.Errorf("platform = %+v, want Amazon", resp.Platform)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/platform?url=https://example.org/checkout", nil)
	resp = decodeBody[platformResponse](t, rec)
	if resp.Supported {
		t.Error("unknown host reported as supported")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/platform", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", rec.Code)
	}
}

const amazonConfirmationHTML = `<html><head><title>Order placed</title></head><body>
<div id="thank-you-message">Thank you, your order has been placed.</div>
<span id="productTitle">Mechanical Keyboard</span>
<table id="subtotals-marketplace-table">
  <tr><td class="grand-total-price">$42.99</td></tr>
</table>
</body></html>`

func TestScanSavesConfirmedOrder(t *testing.T) {
	srv, repo := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/scan", scanRequest{
		URL:   "https://www.amazon.com/gp/buy/spc/thankyou",
		Title: "Order placed",
		HTML:  amazonConfirmationHTML,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[scanResponse](t, rec)
	if resp.Platform != "Amazon" {
		t.Errorf("platform = %q, want Amazon", resp.Platform)
	}
	if !resp.Result.Saved {
		t.Fatalf("not saved, reason = %q", resp.Result.Reason)
	}
	if resp.Result.Purchase.Amount.Cents != 4299 {
		t.Errorf("amount = %d cents, want 4299", resp.Result.Purchase.Amount.Cents)
	}
	if resp.Result.Purchase.Description != "Mechanical Keyboard" {
		t.Errorf("description = %q", resp.Result.Purchase.Description)
	}
	if len(repo.purchases) != 1 {
		t.Errorf("stored %d purchases, want 1", len(repo.purchases))
	}
}

func TestScanRejectionReasons(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		req    scanRequest
		reason string
	}{
		{
			name:   "unknown host",
			req:    scanRequest{URL: "https://example.org/thankyou", HTML: "<html></html>"},
			reason: reasonUnsupportedPlatform,
		},
		{
			name:   "product page",
			req:    scanRequest{URL: "https://www.amazon.com/dp/B0EXAMPLE", HTML: "<html></html>"},
			reason: reasonNotOrderPage,
		},
		{
			name: "checkout not completed",
			req: scanRequest{
				URL:  "https://www.amazon.com/gp/buy/spc/review",
				HTML: `<html><body><div class="cart">Review your items</div></body></html>`,
			},
			reason: reasonNotConfirmed,
		},
		{
			name: "no order total",
			req: scanRequest{
				URL:  "https://www.amazon.com/gp/buy/spc/thankyou",
				HTML: `<html><body><div id="thank-you-message">Thank you for your order</div></body></html>`,
			},
			reason: reasonNoTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/scan", tt.req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			resp := decodeBody[scanResponse](t, rec)
			if resp.Result.Saved {
				t.Fatal("saved, want rejection")
			}
			if resp.Result.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", resp.Result.Reason, tt.reason)
			}
		})
	}
}

func TestScanMissingURL(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/scan", scanRequest{HTML: "<html></html>"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitAndListPurchases(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/purchases", map[string]any{
		"amount":   19.99,
		"platform": "eBay",
		"category": "Electronics",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody[services.SubmitResult](t, rec)
	if !result.Saved {
		t.Fatalf("not saved, reason = %q", result.Reason)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/purchases", nil)
	list := decodeBody[purchaseListResponse](t, rec)
	if len(list.Purchases) != 1 {
		t.Fatalf("listed %d purchases, want 1", len(list.Purchases))
	}
	if list.Purchases[0].Amount.Cents != 1999 {
		t.Errorf("amount = %d cents, want 1999", list.Purchases[0].Amount.Cents)
	}
}

func TestSubmitInvalidAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/purchases", map[string]any{"amount": 0})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestManualPurchase(t *testing.T) {
	srv, repo := newTestServer(t)

	// Tracking off: scans are rejected but manual entry still works.
	repo.settings.TrackingEnabled = false

	rec := doJSON(t, srv, http.MethodPost, "/api/purchases/manual", map[string]any{
		"amount":      5.00,
		"description": "Coffee beans",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody[services.SubmitResult](t, rec)
	if !result.Saved || result.Purchase.Platform != "Manual" {
		t.Errorf("result = %+v, want saved manual purchase", result)
	}
}

func TestDeletePurchase(t *testing.T) {
	srv, repo := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/purchases/manual", map[string]any{"amount": 10.0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status = %d", rec.Code)
	}
	id := repo.purchases[0].ID

	rec = doJSON(t, srv, http.MethodDelete, "/api/purchases/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(repo.purchases) != 0 {
		t.Errorf("purchase not deleted")
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/purchases/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/settings", nil)
	settings := decodeBody[core.Settings](t, rec)
	if settings.BudgetPeriod != core.Monthly {
		t.Errorf("default period = %q, want monthly", settings.BudgetPeriod)
	}

	settings.BudgetAmount = core.Money{Cents: 25000}
	settings.BudgetPeriod = core.Weekly
	settings.AlertThreshold = 10 // below the floor, should be clamped up

	rec = doJSON(t, srv, http.MethodPut, "/api/settings", settings)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	stored := decodeBody[core.Settings](t, rec)
	if stored.BudgetAmount.Cents != 25000 || stored.BudgetPeriod != core.Weekly {
		t.Errorf("stored = %+v", stored)
	}
	if stored.AlertThreshold != core.MinAlertThreshold {
		t.Errorf("threshold = %d, want clamped to %d", stored.AlertThreshold, core.MinAlertThreshold)
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/categories", addCategoryRequest{Name: "  Gifts  "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	resp := decodeBody[categoryListResponse](t, rec)
	found := false
	for _, c := range resp.Categories {
		if c == "Gifts" {
			found = true
		}
	}
	if !found {
		t.Errorf("categories = %v, missing Gifts", resp.Categories)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/categories", addCategoryRequest{Name: "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name: status = %d, want 422", rec.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	srv, repo := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/purchases/manual", map[string]any{
		"amount":      30.0,
		"description": "Desk lamp",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data := decodeBody[services.ExportData](t, rec)
	if len(data.Purchases) != 1 {
		t.Fatalf("exported %d purchases, want 1", len(data.Purchases))
	}

	repo.purchases = nil

	rec = doJSON(t, srv, http.MethodPost, "/api/import", data)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[importResponse](t, rec)
	if resp.Imported != 1 {
		t.Errorf("imported = %d, want 1", resp.Imported)
	}
	if len(repo.purchases) != 1 {
		t.Errorf("stored %d purchases after import, want 1", len(repo.purchases))
	}
}

func TestImportRejectsBadRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	data := services.ExportData{
		Purchases: []core.Purchase{{ID: "x1", Amount: core.Money{Cents: -5}}},
		Settings:  core.DefaultSettings(),
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/import", data)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestBudgetEndpointAndInvalidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/budget", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := decodeBody[core.BudgetStatus](t, rec)
	if status.Count != 0 {
		t.Errorf("count = %d, want 0", status.Count)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/purchases/manual", map[string]any{"amount": 100.0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status = %d", rec.Code)
	}

	// The write purged the cache, so the new purchase is visible at once.
	rec = doJSON(t, srv, http.MethodGet, "/api/budget", nil)
	status = decodeBody[core.BudgetStatus](t, rec)
	if status.Count != 1 || status.Spent.Cents != 10000 {
		t.Errorf("status = %+v, want 1 purchase / 10000 cents", status)
	}
}

func TestSpendingEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, amount := range []float64{10.0, 20.0} {
		rec := doJSON(t, srv, http.MethodPost, "/api/purchases/manual", map[string]any{
			"amount":   amount,
			"category": "Books",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed: status = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/spending?period=monthly", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("spending: status = %d", rec.Code)
	}
	spending := decodeBody[core.Spending](t, rec)
	if spending.Total.Cents != 3000 || spending.Count != 2 {
		t.Errorf("spending = %+v, want 3000 cents over 2 purchases", spending)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/spending/categories", nil)
	byCat := decodeBody[map[string][]core.CategorySpending](t, rec)
	if len(byCat["categories"]) != 1 || byCat["categories"][0].Category != "Books" {
		t.Errorf("categories = %+v", byCat)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/spending/weekly?weeks=2", nil)
	weekly := decodeBody[map[string][]core.WeekSummary](t, rec)
	if len(weekly["weeks"]) != 2 {
		t.Errorf("weeks = %d, want 2", len(weekly["weeks"]))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/api/settings", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, PUT" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/settings", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'none'") {
		t.Errorf("CSP = %q", got)
	}
}
