package matching

import "math"

// AcceptRateKey addresses one feedback bucket of one user.
type AcceptRateKey struct {
	UserID uint
	Skill  string
}

// AcceptRates is a batch snapshot of feedback accept-rates.
type AcceptRates map[AcceptRateKey]float64

// Resolve returns the bucket-specific accept-rate, falling back to the
// user's general bucket and finally to zero.
func (r AcceptRates) Resolve(userID uint, skill string) float64 {
	bucket := BucketOf(skill)
	if rate, ok := r[AcceptRateKey{UserID: userID, Skill: bucket}]; ok {
		return rate
	}
	if rate, ok := r[AcceptRateKey{UserID: userID, Skill: GeneralSkill}]; ok {
		return rate
	}
	return 0
}

// AcceptRate computes accepted/total with four decimal precision.
func AcceptRate(accepted, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return roundTo(float64(accepted)/float64(total), 4)
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

func clamp(value, lower, upper float64) float64 {
	if math.IsNaN(value) {
		return lower
	}
	return math.Max(lower, math.Min(upper, value))
}
