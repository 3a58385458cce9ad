package scoring

// Weights is the relative importance of each criterion.
type Weights struct {
	Price       float64 `json:"price"`
	LeadTime    float64 `json:"leadTime"`
	Quality     float64 `json:"quality"`
	Reliability float64 `json:"reliability"`
}

// Sum adds the four weights in a fixed order.
func (w Weights) Sum() float64 {
	return w.Price + w.LeadTime + w.Quality + w.Reliability
}

// DefaultWeights returns the weights used for any criterion not overridden.
func DefaultWeights() Weights {
	return Weights{
		Price:       DefaultPriceWeight,
		LeadTime:    DefaultLeadTimeWeight,
		Quality:     DefaultQualityWeight,
		Reliability: DefaultReliabilityWeight,
	}
}

// WeightOverrides holds user-supplied weights. A nil field keeps the default.
type WeightOverrides struct {
	Price       *float64 `json:"price,omitempty" mapstructure:"price"`
	LeadTime    *float64 `json:"leadTime,omitempty" mapstructure:"lead_time"`
	Quality     *float64 `json:"quality,omitempty" mapstructure:"quality"`
	Reliability *float64 `json:"reliability,omitempty" mapstructure:"reliability"`
}

// Merge returns o with every field set in top replacing o's value.
func (o WeightOverrides) Merge(top WeightOverrides) WeightOverrides {
	merged := o
	if top.Price != nil {
		merged.Price = top.Price
	}
	if top.LeadTime != nil {
		merged.LeadTime = top.LeadTime
	}
	if top.Quality != nil {
		merged.Quality = top.Quality
	}
	if top.Reliability != nil {
		merged.Reliability = top.Reliability
	}
	return merged
}

// ResolveWeights applies overrides to the defaults and renormalises so the
// result sums to 1. When every weight is zero the zeros are returned as-is.
func ResolveWeights(o WeightOverrides) Weights {
	w := DefaultWeights()
	if o.Price != nil {
		w.Price = *o.Price
	}
	if o.LeadTime != nil {
		w.LeadTime = *o.LeadTime
	}
	if o.Quality != nil {
		w.Quality = *o.Quality
	}
	if o.Reliability != nil {
		w.Reliability = *o.Reliability
	}

	total := w.Sum()
	if total == 0 {
		total = 1
	}
	return Weights{
		Price:       w.Price / total,
		LeadTime:    w.LeadTime / total,
		Quality:     w.Quality / total,
		Reliability: w.Reliability / total,
	}
}
