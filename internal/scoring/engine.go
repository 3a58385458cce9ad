package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks structurally malformed input. Business data gaps never
// produce it; they are substituted with defaults or penalties.
var ErrInvalidInput = errors.New("INVALID_INPUT")

// ComputeScores ranks quotes against rfq. histories is keyed by supplier name
// and may be nil.
func ComputeScores(rfq *RFQ, quotes []Quote, histories map[string]VendorHistory, cfg Config) (*RankedResult, error) {
	raw, err := RawScores(rfq, quotes, histories, cfg)
	if err != nil {
		return nil, err
	}

	weights := ResolveWeights(cfg.Weights)
	vendors := Rank(Normalize(raw), weights)

	result := &RankedResult{
		Weights: weights,
		Vendors: vendors,
	}
	if len(vendors) > 0 {
		winner := vendors[0]
		result.Winner = &winner
	}
	return result, nil
}

// RawScores runs the first three stages and returns one RawScore per quote in
// input order.
func RawScores(rfq *RFQ, quotes []Quote, histories map[string]VendorHistory, cfg Config) ([]RawScore, error) {
	if err := validate(rfq, quotes); err != nil {
		return nil, err
	}

	t := cfg.tunables()
	raw := make([]RawScore, 0, len(quotes))
	for _, q := range quotes {
		var history *VendorHistory
		if h, ok := histories[q.SupplierName]; ok {
			history = &h
		}

		quality, reliability := DerivePerformance(history, t)
		raw = append(raw, RawScore{
			Vendor: q.SupplierName,
			Criteria: Criteria{
				Price:       AggregateCost(rfq, q, cfg.CurrencyRates, t),
				LeadTime:    ResolveLeadTime(q, history, t),
				Quality:     quality,
				Reliability: reliability,
			},
		})
	}
	return raw, nil
}

func validate(rfq *RFQ, quotes []Quote) error {
	if rfq == nil {
		return fmt.Errorf("%w: rfq is required", ErrInvalidInput)
	}
	for i, item := range rfq.Items {
		if item.SKU == "" {
			return fmt.Errorf("%w: rfq.items[%d].sku is required", ErrInvalidInput, i)
		}
	}
	for i, q := range quotes {
		if q.SupplierName == "" {
			return fmt.Errorf("%w: quotes[%d].supplierName is required", ErrInvalidInput, i)
		}
	}
	return nil
}
