// Package extract turns a confirmed checkout page into a purchase candidate
// using the platform's selector chains.
package extract

import (
	"strings"

	"spendwatch/internal/core"
	"spendwatch/internal/page"
	"spendwatch/internal/platform"
)

const maxItemNames = 5

// Purchase extracts a normalized purchase candidate from a page surface, or
// returns ok=false when the page yields nothing usable. Failure here is the
// expected common case (most pages have no order total) and is not an error.
//
// The order-total selectors are a fallback chain: the first selector that
// matches an element wins and its text is parsed. Item-name selectors work
// the same way, except the winning selector contributes all of its matches.
func Purchase(surface page.Surface, def *platform.Definition) (core.PurchaseCandidate, bool) {
	if def == nil {
		return core.PurchaseCandidate{}, false
	}

	totalText, found := surface.QueryFirst(def.Selectors.OrderTotal)
	if !found {
		return core.PurchaseCandidate{}, false
	}

	cents, err := core.ParseOrderTotal(totalText)
	if err != nil {
		return core.PurchaseCandidate{}, false
	}

	return core.PurchaseCandidate{
		Amount:      core.Money{Cents: cents},
		Currency:    core.DetectCurrencySymbol(totalText),
		Platform:    def.Name,
		Description: description(surface, def),
		Category:    def.DefaultCategory,
		URL:         surface.URL(),
		PageTitle:   surface.Title(),
	}, true
}

func description(surface page.Surface, def *platform.Definition) string {
	for _, sel := range def.Selectors.ItemName {
		names := surface.QueryAllText(sel)
		if len(names) == 0 {
			continue
		}
		if len(names) > maxItemNames {
			names = names[:maxItemNames]
		}
		return strings.Join(names, ", ")
	}
	return "Purchase on " + def.Name
}
