// Package platform holds the static catalog of known merchant sites and the
// pure functions that classify URLs and pages against it. Definitions are
// built once at init and never mutated; lookups walk the registry in a fixed
// order so ties break deterministically.
package platform

import "regexp"

type (
	// PathRule is one order-page path pattern. Case sensitivity is part of
	// the rule, not the matcher.
	PathRule struct {
		Source          string
		CaseInsensitive bool

		re *regexp.Regexp
	}

	// Selectors are the ordered DOM-location fallback chains for a site.
	// Each list is tried in priority order until one matches; later entries
	// exist because merchant markup drifts between site versions.
	Selectors struct {
		OrderTotal             []string
		ItemName               []string
		ConfirmationIndicators []string
	}

	// Definition describes one known merchant site.
	Definition struct {
		Key               string
		Name              string
		HostPattern       *regexp.Regexp
		OrderPagePatterns []PathRule
		Selectors         Selectors
		DefaultCategory   string
	}
)

func rule(source string) PathRule {
	return PathRule{Source: source, re: regexp.MustCompile(source)}
}

func irule(source string) PathRule {
	return PathRule{Source: source, CaseInsensitive: true, re: regexp.MustCompile("(?i)" + source)}
}

// Match applies the rule to the path+query portion of a URL.
func (r PathRule) Match(pathAndQuery string) bool {
	return r.re.MatchString(pathAndQuery)
}

// Registry is the fixed, ordered merchant catalog. Order matters: the first
// host match wins when patterns overlap.
var Registry = []Definition{
	{
		Key:         "amazon",
		Name:        "Amazon",
		HostPattern: regexp.MustCompile(`amazon\.(com|co\.uk|ca|de|fr|es|it|co\.jp)`),
		OrderPagePatterns: []PathRule{
			rule(`/gp/buy/spc`),
			rule(`/gp/css/summary`),
			irule(`/order`),
			irule(`/thankyou`),
			rule(`buy/thankyou`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				"#subtotals-marketplace-table .grand-total-price",
				".grand-total-price",
				"#orderSummary .a-color-price",
				".order-total .a-color-price",
				"#bottomRightGroup .a-color-price",
			},
			ItemName: []string{
				".yo-giftcard-shipment-group .a-link-normal",
				"#productTitle",
				".a-truncate-cut",
				".sc-product-title",
			},
			ConfirmationIndicators: []string{
				"#thank-you-message",
				".a-alert-heading",
				"#orderDetails",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "ebay",
		Name:        "eBay",
		HostPattern: regexp.MustCompile(`ebay\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/ord/show`),
			rule(`/chk/confirm`),
			irule(`/purchaseconfirm`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".cost-label + .cost-value",
				".total-row .item-price",
				"#ppcTotal",
				".order-total .text-display",
			},
			ItemName: []string{
				".item-title a",
				".purchase-title",
				"#itemTitle",
				".vi-title",
			},
			ConfirmationIndicators: []string{
				".purchase-confirmation",
				"#confirmation-page",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "walmart",
		Name:        "Walmart",
		HostPattern: regexp.MustCompile(`walmart\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/checkout`),
			irule(`/order`),
			irule(`/thankyou`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".price-total .price-characteristic",
				`[data-testid="total-value"]`,
				".order-summary-total .price",
			},
			ItemName: []string{
				".product-title",
				`[data-testid="item-description"]`,
				".cart-item-name",
			},
			ConfirmationIndicators: []string{
				".thank-you-page",
				`[data-testid="order-confirmation"]`,
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "target",
		Name:        "Target",
		HostPattern: regexp.MustCompile(`target\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/co-review`),
			rule(`/co-thankyou`),
			irule(`/order`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				`[data-test="orderSummary-total"]`,
				".OrderSummary__Total",
				".order-total-value",
			},
			ItemName: []string{
				`[data-test="cartItem-title"]`,
				".CartItemTitle",
				".OrderItemTitle",
			},
			ConfirmationIndicators: []string{
				`[data-test="order-confirmation"]`,
				".ThankYouPage",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "bestbuy",
		Name:        "Best Buy",
		HostPattern: regexp.MustCompile(`bestbuy\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/checkout`),
			irule(`/order`),
			irule(`/thank-you`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".order-summary__total .cash-money",
				".price-summary__total-value",
				".order-total",
			},
			ItemName: []string{
				".cart-item__title",
				".sku-title a",
				".line-item-name",
			},
			ConfirmationIndicators: []string{
				".thank-you",
				".order-confirmation",
			},
		},
		DefaultCategory: "Electronics",
	},
	{
		Key:         "etsy",
		Name:        "Etsy",
		HostPattern: regexp.MustCompile(`etsy\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/checkout`),
			irule(`/thankyou`),
			rule(`/your/purchases`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".order-total .currency-value",
				".grand-total .money",
				"[data-order-total]",
			},
			ItemName: []string{
				".listing-title",
				".transaction-title",
				".cart-listing-title",
			},
			ConfirmationIndicators: []string{
				".thank-you-page",
				".confirmation-page",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "shopify",
		Name:        "Shopify Store",
		HostPattern: regexp.MustCompile(`shopify\.com|myshopify\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/checkouts/.+/thank_you`),
			rule(`/orders/`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".payment-due__price",
				".total-line--total .payment-due__price",
				"[data-checkout-payment-due-target]",
			},
			ItemName: []string{
				".product__description__name",
				".order-summary__emphasis",
			},
			ConfirmationIndicators: []string{
				".thank-you",
				".os-header__title",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "aliexpress",
		Name:        "AliExpress",
		HostPattern: regexp.MustCompile(`aliexpress\.com`),
		OrderPagePatterns: []PathRule{
			irule(`/order`),
			irule(`/confirm`),
			irule(`/thankyou`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".order-price .highlight",
				".total-price",
				".order-amount",
			},
			ItemName: []string{
				".product-title a",
				".order-item-title",
				".item-title",
			},
			ConfirmationIndicators: []string{
				".order-success",
				".pay-success",
			},
		},
		DefaultCategory: "Other",
	},
	{
		Key:         "newegg",
		Name:        "Newegg",
		HostPattern: regexp.MustCompile(`newegg\.com`),
		OrderPagePatterns: []PathRule{
			rule(`/secure/checkout`),
			irule(`/order`),
			irule(`/thankyou`),
		},
		Selectors: Selectors{
			OrderTotal: []string{
				".summary-content-total strong",
				".order-total .price",
				".summary-total",
			},
			ItemName: []string{
				".item-cell .item-title a",
				".product-title",
				".item-desc",
			},
			ConfirmationIndicators: []string{
				".order-confirmation",
				".thank-you-section",
			},
		},
		DefaultCategory: "Electronics",
	},
}
