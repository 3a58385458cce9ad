package scoring

// DerivePerformance maps history to quality (1 - defectRate) and reliability
// (onTimeRate). Missing history, or a missing field, takes the default rate.
func DerivePerformance(history *VendorHistory, t Tunables) (quality, reliability float64) {
	defectRate, onTimeRate := t.DefaultDefectRate, t.DefaultOnTimeRate
	if history != nil {
		if history.DefectRate != nil {
			defectRate = *history.DefectRate
		}
		if history.OnTimeRate != nil {
			onTimeRate = *history.OnTimeRate
		}
	}
	return 1 - defectRate, onTimeRate
}
