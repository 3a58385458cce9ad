// Package scoring ranks supplier quotes against a request for quotation.
//
// The engine is a stateless pipeline: cost aggregation, lead-time resolution,
// quality/reliability derivation, min-max normalisation and a weighted ranking.
// It performs no I/O and never mutates its inputs, so a single call can run
// concurrently with any other.
package scoring

// RFQItem is one basis line of a request for quotation.
type RFQItem struct {
	SKU      string  `json:"sku"`
	Quantity float64 `json:"quantity"`
}

// RFQ defines the quantities every quote is compared against.
type RFQ struct {
	ID    string    `json:"id,omitempty"`
	Items []RFQItem `json:"items"`
}

// QuoteItem is a priced line in a supplier's response. LeadTimeDays is nil
// when the supplier did not state one.
type QuoteItem struct {
	SKU          string   `json:"sku"`
	Quantity     float64  `json:"quantity"`
	UnitPrice    float64  `json:"unitPrice"`
	Currency     string   `json:"currency"`
	LeadTimeDays *float64 `json:"leadTimeDays,omitempty"`
}

// Quote is one supplier's response to an RFQ.
type Quote struct {
	ID           string      `json:"id"`
	SupplierName string      `json:"supplierName"`
	Items        []QuoteItem `json:"items"`
}

// VendorHistory is the aggregated past performance of a supplier. Any field
// may be nil, in which case the engine substitutes its default.
type VendorHistory struct {
	OnTimeRate      *float64 `json:"onTimeRate,omitempty"`
	DefectRate      *float64 `json:"defectRate,omitempty"`
	AvgLeadTimeDays *float64 `json:"avgLeadTimeDays,omitempty"`
}

// Criteria holds one value per scoring criterion.
type Criteria struct {
	Price       float64 `json:"price"`
	LeadTime    float64 `json:"leadTime"`
	Quality     float64 `json:"quality"`
	Reliability float64 `json:"reliability"`
}

// RawScore carries a vendor's criteria in native units (currency, days, rates).
type RawScore struct {
	Vendor string `json:"vendor"`
	Criteria
}

// NormalizedScore carries a vendor's criteria rescaled to [0,1], 1 being best.
type NormalizedScore struct {
	Vendor string `json:"vendor"`
	Criteria
}

// FinalResult is a ranked vendor. Components are the normalised criteria.
type FinalResult struct {
	Vendor     string   `json:"vendor"`
	Components Criteria `json:"components"`
	Score      float64  `json:"score"`
}

// RankedResult is the engine output. Vendors are sorted by descending score
// and Winner is nil when there were no quotes.
type RankedResult struct {
	Weights Weights       `json:"weights"`
	Vendors []FinalResult `json:"vendors"`
	Winner  *FinalResult  `json:"winner,omitempty"`
}

// Config is the per-request scoring configuration.
type Config struct {
	Weights       WeightOverrides    `json:"weights"`
	CurrencyRates map[string]float64 `json:"currencyRates,omitempty"`

	// Tunables replaces the penalty and default constants. Nil means DefaultTunables.
	Tunables *Tunables `json:"-"`
}

func (c Config) tunables() Tunables {
	if c.Tunables == nil {
		return DefaultTunables()
	}
	return *c.Tunables
}
