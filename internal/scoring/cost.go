package scoring

import (
	"strings"
)

// AggregateCost totals a quote over the RFQ's basis lines, not the quote's own
// lines, so every vendor is priced against the same quantities. A basis line
// the quote does not cover costs quantity × MissingItemPenalty.
func AggregateCost(rfq *RFQ, quote Quote, rates map[string]float64, t Tunables) float64 {
	lines := indexLines(quote.Items)

	total := 0.0
	for _, item := range rfq.Items {
		line, ok := lines[item.SKU]
		if !ok {
			total += item.Quantity * t.MissingItemPenalty
			continue
		}
		total += item.Quantity * line.UnitPrice * CurrencyRate(rates, line.Currency)
	}
	return total
}

// MissingItems counts the RFQ lines the quote has no price for.
func MissingItems(rfq *RFQ, quote Quote) int {
	if rfq == nil {
		return 0
	}
	lines := indexLines(quote.Items)
	missing := 0
	for _, item := range rfq.Items {
		if _, ok := lines[item.SKU]; !ok {
			missing++
		}
	}
	return missing
}

// CurrencyRate returns the multiplier converting currency into the base currency.
// Unknown currencies, a nil table and unusable rates (non-finite or <= 0) all yield 1.
func CurrencyRate(rates map[string]float64, currency string) float64 {
	if len(rates) == 0 {
		return 1
	}
	rate, ok := rates[currency]
	if !ok {
		rate, ok = rates[strings.ToUpper(strings.TrimSpace(currency))]
	}
	if !ok || !isFinite(rate) || rate <= 0 {
		return 1
	}
	return rate
}

// indexLines keeps the first line quoted for each SKU.
func indexLines(items []QuoteItem) map[string]QuoteItem {
	lines := make(map[string]QuoteItem, len(items))
	for _, item := range items {
		if _, dup := lines[item.SKU]; !dup {
			lines[item.SKU] = item
		}
	}
	return lines
}
