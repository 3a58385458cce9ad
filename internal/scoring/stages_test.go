package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateCost(t *testing.T) {
	rfq := &RFQ{Items: []RFQItem{{SKU: "A", Quantity: 10}, {SKU: "B", Quantity: 2}}}
	tunables := DefaultTunables()

	tests := []struct {
		name     string
		quote    Quote
		rates    map[string]float64
		expected float64
	}{
		{
			name: "prices rfq quantities not quoted quantities",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", Quantity: 1, UnitPrice: 3, Currency: "USD"},
				{SKU: "B", Quantity: 100, UnitPrice: 5, Currency: "USD"},
			}},
			expected: 40,
		},
		{
			name: "applies currency rate",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", UnitPrice: 3, Currency: "EUR"},
				{SKU: "B", UnitPrice: 5, Currency: "USD"},
			}},
			rates:    map[string]float64{"EUR": 2, "USD": 1},
			expected: 70,
		},
		{
			name: "unknown currency uses rate one",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", UnitPrice: 3, Currency: "JPY"},
				{SKU: "B", UnitPrice: 5, Currency: "USD"},
			}},
			rates:    map[string]float64{"EUR": 2},
			expected: 40,
		},
		{
			name: "missing line is penalised per unit",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", UnitPrice: 3, Currency: "USD"},
			}},
			expected: 30 + 2*MissingItemPenalty,
		},
		{
			name: "first duplicate sku wins",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", UnitPrice: 3, Currency: "USD"},
				{SKU: "A", UnitPrice: 1000, Currency: "USD"},
				{SKU: "B", UnitPrice: 5, Currency: "USD"},
			}},
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AggregateCost(rfq, tt.quote, tt.rates, tunables), 1e-6)
		})
	}
}

func TestCurrencyRate(t *testing.T) {
	rates := map[string]float64{"EUR": 1.1, "GBP": 0, "CHF": math.Inf(1)}

	assert.Equal(t, 1.0, CurrencyRate(nil, "EUR"))
	assert.Equal(t, 1.1, CurrencyRate(rates, "EUR"))
	assert.Equal(t, 1.1, CurrencyRate(rates, " eur "))
	assert.Equal(t, 1.0, CurrencyRate(rates, "GBP"))
	assert.Equal(t, 1.0, CurrencyRate(rates, "CHF"))
	assert.Equal(t, 1.0, CurrencyRate(rates, "SEK"))
}

func TestResolveLeadTime(t *testing.T) {
	tunables := DefaultTunables()
	avg := 12.0

	tests := []struct {
		name     string
		quote    Quote
		history  *VendorHistory
		expected float64
	}{
		{
			name: "slowest line drives the order",
			quote: Quote{Items: []QuoteItem{
				{SKU: "A", LeadTimeDays: days(3)},
				{SKU: "B", LeadTimeDays: days(14)},
				{SKU: "C"},
			}},
			history:  &VendorHistory{AvgLeadTimeDays: &avg},
			expected: 14,
		},
		{
			name:     "falls back to vendor average",
			quote:    Quote{Items: []QuoteItem{{SKU: "A"}}},
			history:  &VendorHistory{AvgLeadTimeDays: &avg},
			expected: 12,
		},
		{
			name:     "non-finite lines are ignored",
			quote:    Quote{Items: []QuoteItem{{SKU: "A", LeadTimeDays: days(math.Inf(1))}}},
			history:  &VendorHistory{AvgLeadTimeDays: &avg},
			expected: 12,
		},
		{
			name:     "unknown lead time uses sentinel",
			quote:    Quote{Items: []QuoteItem{{SKU: "A"}}},
			expected: UnknownLeadTimeDays,
		},
		{
			name:     "history without average uses sentinel",
			quote:    Quote{},
			history:  &VendorHistory{OnTimeRate: rate(0.9)},
			expected: UnknownLeadTimeDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveLeadTime(tt.quote, tt.history, tunables))
		})
	}
}

func TestDerivePerformance(t *testing.T) {
	tunables := DefaultTunables()

	quality, reliability := DerivePerformance(nil, tunables)
	assert.InDelta(t, 0.95, quality, 1e-12)
	assert.InDelta(t, 0.90, reliability, 1e-12)

	quality, reliability = DerivePerformance(&VendorHistory{DefectRate: rate(0.2)}, tunables)
	assert.InDelta(t, 0.8, quality, 1e-12)
	assert.InDelta(t, 0.90, reliability, 1e-12)

	quality, reliability = DerivePerformance(&VendorHistory{OnTimeRate: rate(0.6), DefectRate: rate(0)}, tunables)
	assert.InDelta(t, 1, quality, 1e-12)
	assert.InDelta(t, 0.6, reliability, 1e-12)
}

func TestNormalize(t *testing.T) {
	raw := []RawScore{
		{Vendor: "A", Criteria: Criteria{Price: 100, LeadTime: 10, Quality: 0.9, Reliability: 0.5}},
		{Vendor: "B", Criteria: Criteria{Price: 200, LeadTime: 20, Quality: 0.95, Reliability: 0.5}},
		{Vendor: "C", Criteria: Criteria{Price: 150, LeadTime: math.NaN(), Quality: 1.0, Reliability: 0.5}},
	}

	out := Normalize(raw)
	assert.Len(t, out, 3)

	assert.Equal(t, "A", out[0].Vendor)
	assert.InDelta(t, 1, out[0].Price, 1e-12)
	assert.InDelta(t, 0, out[1].Price, 1e-12)
	assert.InDelta(t, 0.5, out[2].Price, 1e-12)

	assert.InDelta(t, 1, out[0].LeadTime, 1e-12)
	assert.InDelta(t, 0, out[1].LeadTime, 1e-12)
	assert.Equal(t, 0.0, out[2].LeadTime)

	assert.InDelta(t, 0, out[0].Quality, 1e-12)
	assert.InDelta(t, 0.5, out[1].Quality, 1e-9)
	assert.InDelta(t, 1, out[2].Quality, 1e-12)

	for _, n := range out {
		assert.Equal(t, 1.0, n.Reliability)
	}
}

func TestNormalize_RangeInvariant(t *testing.T) {
	raw := []RawScore{
		{Vendor: "A", Criteria: Criteria{Price: -1e300, LeadTime: 1, Quality: 0, Reliability: 1}},
		{Vendor: "B", Criteria: Criteria{Price: 1e308, LeadTime: 9999, Quality: 1, Reliability: 0}},
		{Vendor: "C", Criteria: Criteria{Price: 3, LeadTime: 4, Quality: 0.3, Reliability: 0.7}},
	}
	for _, n := range Normalize(raw) {
		for _, v := range []float64{n.Price, n.LeadTime, n.Quality, n.Reliability} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestNormalize_SpreadOverflow(t *testing.T) {
	raw := []RawScore{
		{Vendor: "cheap", Criteria: Criteria{Price: -math.MaxFloat64, LeadTime: 1, Quality: 1, Reliability: 1}},
		{Vendor: "dear", Criteria: Criteria{Price: math.MaxFloat64, LeadTime: 1, Quality: 1, Reliability: 1}},
		{Vendor: "middle", Criteria: Criteria{Price: 0, LeadTime: 1, Quality: 1, Reliability: 1}},
	}

	out := Normalize(raw)
	assert.Equal(t, 1.0, out[0].Price)
	assert.Equal(t, 0.0, out[1].Price)
	assert.InDelta(t, 0.5, out[2].Price, 1e-12)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}

func TestResolveWeights(t *testing.T) {
	w := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		override WeightOverrides
		expected Weights
	}{
		{
			name:     "defaults",
			expected: Weights{Price: 0.4, LeadTime: 0.2, Quality: 0.2, Reliability: 0.2},
		},
		{
			name:     "partial override keeps remaining defaults",
			override: WeightOverrides{Price: w(1.4)},
			expected: Weights{Price: 1.4 / 2, LeadTime: 0.2 / 2, Quality: 0.2 / 2, Reliability: 0.2 / 2},
		},
		{
			name:     "unnormalised weights are rescaled",
			override: WeightOverrides{Price: w(2), LeadTime: w(2), Quality: w(4), Reliability: w(2)},
			expected: Weights{Price: 0.2, LeadTime: 0.2, Quality: 0.4, Reliability: 0.2},
		},
		{
			name:     "all zero is preserved",
			override: WeightOverrides{Price: w(0), LeadTime: w(0), Quality: w(0), Reliability: w(0)},
			expected: Weights{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWeights(tt.override)
			assert.InDelta(t, tt.expected.Price, got.Price, 1e-9)
			assert.InDelta(t, tt.expected.LeadTime, got.LeadTime, 1e-9)
			assert.InDelta(t, tt.expected.Quality, got.Quality, 1e-9)
			assert.InDelta(t, tt.expected.Reliability, got.Reliability, 1e-9)
			if tt.expected.Sum() > 0 {
				assert.InDelta(t, 1, got.Sum(), 1e-9)
			}
		})
	}
}

func TestWeightOverrides_Merge(t *testing.T) {
	w := func(v float64) *float64 { return &v }
	base := WeightOverrides{Price: w(0.5), Quality: w(0.1)}
	top := WeightOverrides{Quality: w(0.3), Reliability: w(0.4)}

	merged := base.Merge(top)
	assert.Equal(t, 0.5, *merged.Price)
	assert.Nil(t, merged.LeadTime)
	assert.Equal(t, 0.3, *merged.Quality)
	assert.Equal(t, 0.4, *merged.Reliability)
	assert.Equal(t, 0.1, *base.Quality)
}

func TestRank_ZeroWeightsScoreZero(t *testing.T) {
	normalized := []NormalizedScore{
		{Vendor: "A", Criteria: Criteria{Price: 1, LeadTime: 1, Quality: 1, Reliability: 1}},
		{Vendor: "B", Criteria: Criteria{Price: 0, LeadTime: 0, Quality: 0, Reliability: 0}},
	}
	results := Rank(normalized, Weights{})
	assert.Equal(t, "A", results[0].Vendor)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, 0.0, results[1].Score)
}
