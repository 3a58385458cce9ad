package scoring

// ResolveLeadTime returns the slowest finite line lead time of the quote. With
// no usable line lead time it falls back to the vendor's recorded average, and
// then to the UnknownLeadTimeDays sentinel.
func ResolveLeadTime(quote Quote, history *VendorHistory, t Tunables) float64 {
	slowest, found := 0.0, false
	for _, item := range quote.Items {
		if item.LeadTimeDays == nil || !isFinite(*item.LeadTimeDays) {
			continue
		}
		if !found || *item.LeadTimeDays > slowest {
			slowest = *item.LeadTimeDays
			found = true
		}
	}
	if found {
		return slowest
	}

	if history != nil && history.AvgLeadTimeDays != nil && isFinite(*history.AvgLeadTimeDays) {
		return *history.AvgLeadTimeDays
	}
	return t.UnknownLeadTimeDays
}
