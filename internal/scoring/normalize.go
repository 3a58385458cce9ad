package scoring

import "math"

type direction int

const (
	lowerIsBetter direction = iota
	higherIsBetter
)

// Normalize rescales each criterion to [0,1] across the vendor set with min-max
// scaling. Price and lead time are inverted so that 1 is always best. A
// non-finite raw value scores 0; a criterion on which all vendors tie scores 1.
func Normalize(raw []RawScore) []NormalizedScore {
	out := make([]NormalizedScore, len(raw))
	if len(raw) == 0 {
		return out
	}

	price := normalizeColumn(column(raw, func(c Criteria) float64 { return c.Price }), lowerIsBetter)
	leadTime := normalizeColumn(column(raw, func(c Criteria) float64 { return c.LeadTime }), lowerIsBetter)
	quality := normalizeColumn(column(raw, func(c Criteria) float64 { return c.Quality }), higherIsBetter)
	reliability := normalizeColumn(column(raw, func(c Criteria) float64 { return c.Reliability }), higherIsBetter)

	for i, r := range raw {
		out[i] = NormalizedScore{
			Vendor: r.Vendor,
			Criteria: Criteria{
				Price:       price[i],
				LeadTime:    leadTime[i],
				Quality:     quality[i],
				Reliability: reliability[i],
			},
		}
	}
	return out
}

func column(raw []RawScore, pick func(Criteria) float64) []float64 {
	values := make([]float64, len(raw))
	for i, r := range raw {
		values[i] = pick(r.Criteria)
	}
	return values
}

func normalizeColumn(values []float64, dir direction) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	// Halving both ends keeps the spread finite when hi-lo overflows.
	scale := 1.0
	if math.IsInf(hi-lo, 0) {
		scale = 0.5
	}
	spread := hi*scale - lo*scale

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case !isFinite(v):
			out[i] = 0
		case hi == lo:
			out[i] = 1
		case dir == lowerIsBetter:
			out[i] = clamp01((hi*scale - v*scale) / spread)
		default:
			out[i] = clamp01((v*scale - lo*scale) / spread)
		}
	}
	return out
}

// clamp01 absorbs overflow when the spread itself is not representable.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
