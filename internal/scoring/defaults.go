package scoring

import "math"

// Default criterion weights before renormalisation.
const (
	DefaultPriceWeight       = 0.4
	DefaultLeadTimeWeight    = 0.2
	DefaultQualityWeight     = 0.2
	DefaultReliabilityWeight = 0.2
)

const (
	// MissingItemPenalty is charged per unit of an RFQ line the quote does not cover.
	// It is large enough that an incomplete quote never outranks a complete one.
	MissingItemPenalty = 1e9

	// UnknownLeadTimeDays stands in for a lead time nobody reported.
	UnknownLeadTimeDays = 9999.0

	// DefaultDefectRate and DefaultOnTimeRate describe a supplier without history.
	DefaultDefectRate = 0.05
	DefaultOnTimeRate = 0.90
)

// Tunables groups the substitution constants so callers can audit or override them.
type Tunables struct {
	MissingItemPenalty  float64 `json:"missingItemPenalty"`
	UnknownLeadTimeDays float64 `json:"unknownLeadTimeDays"`
	DefaultDefectRate   float64 `json:"defaultDefectRate"`
	DefaultOnTimeRate   float64 `json:"defaultOnTimeRate"`
}

// DefaultTunables returns the documented reference values.
func DefaultTunables() Tunables {
	return Tunables{
		MissingItemPenalty:  MissingItemPenalty,
		UnknownLeadTimeDays: UnknownLeadTimeDays,
		DefaultDefectRate:   DefaultDefectRate,
		DefaultOnTimeRate:   DefaultOnTimeRate,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
