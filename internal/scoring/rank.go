package scoring

import "sort"

// Rank combines normalised criteria into one weighted score per vendor and
// sorts by descending score. Equal scores keep their input order.
func Rank(normalized []NormalizedScore, w Weights) []FinalResult {
	results := make([]FinalResult, len(normalized))
	for i, n := range normalized {
		results[i] = FinalResult{
			Vendor:     n.Vendor,
			Components: n.Criteria,
			Score: w.Price*n.Price +
				w.LeadTime*n.LeadTime +
				w.Quality*n.Quality +
				w.Reliability*n.Reliability,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
