package platform

import (
	"net/url"
	"strings"

	"spendwatch/internal/page"
)

// confirmationPhrases is the textual fallback for confirmation detection.
// Structural indicators are preferred; this list catches sites whose markup
// drifted away from the configured selectors.
var confirmationPhrases = []string{
	"order confirmed",
	"thank you for your order",
	"order has been placed",
	"purchase complete",
	"payment successful",
	"order number",
	"confirmation number",
	"order #",
}

// Detect returns the first registry definition whose host pattern matches
// the URL's hostname, or nil when the site is unknown. Registry order is the
// tie-break when several patterns could match.
func Detect(rawURL string) *Definition {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	hostname := u.Hostname()
	if hostname == "" {
		return nil
	}
	for i := range Registry {
		if Registry[i].HostPattern.MatchString(hostname) {
			return &Registry[i]
		}
	}
	return nil
}

// IsOrderPage reports whether the path+query portion of the URL matches at
// least one of the definition's order-page rules.
func IsOrderPage(rawURL string, def *Definition) bool {
	if def == nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	for _, r := range def.OrderPagePatterns {
		if r.Match(target) {
			return true
		}
	}
	return false
}

// IsOrderConfirmed decides whether a page shows a completed checkout. Two
// independent strategies are ORed: any configured confirmation-indicator
// selector matching an element, or the visible body text containing one of
// the known confirmation phrases. Merchant markup is not under our control,
// so either signal alone is enough.
func IsOrderConfirmed(surface page.Surface, def *Definition) bool {
	if def == nil {
		return false
	}
	for _, sel := range def.Selectors.ConfirmationIndicators {
		if surface.Has(sel) {
			return true
		}
	}

	body := strings.ToLower(surface.BodyText())
	for _, phrase := range confirmationPhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}
	return false
}
