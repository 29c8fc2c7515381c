package numeric

import "math"

// Rating display constants.
const (
	squashPivot       = 400.0
	uncertaintyBonus  = 1200.0
	minDisplayRating  = 1.0
	ratingDecay       = 0.9
	ratingDecaySquare = 0.81
)

// uncertainty is the amount subtracted from a raw rating after n contests.
// It is 1200 after one contest and shrinks to 0 as n grows. n below 1 is
// treated as 1.
func uncertainty(n int) float64 {
	if n < 1 {
		n = 1
	}
	fInf := 1 / math.Sqrt(19)
	fN := math.Sqrt(1-math.Pow(ratingDecaySquare, float64(n))) /
		(math.Sqrt(19) * (1 - math.Pow(ratingDecay, float64(n))))
	return (fN - fInf) / (1 - fInf) * uncertaintyBonus
}

// AdjustRating maps a raw rating to the displayed scale: the newcomer
// uncertainty is subtracted, and anything under 400 is squashed through
// 400*exp((x-400)/400) so the result stays positive (floored at 1).
func AdjustRating(raw float64, n int) float64 {
	discounted := raw - uncertainty(n)
	if discounted >= squashPivot {
		return discounted
	}
	return math.Max(minDisplayRating, squashPivot/math.Exp((squashPivot-discounted)/squashPivot))
}

// DisplayRating is AdjustRating truncated to a whole rating point.
func DisplayRating(raw float64, n int) float64 {
	return math.Trunc(AdjustRating(raw, n))
}

// InverseAdjustRating recovers the raw ability behind a displayed rating
// given the number of contests played before it. ok is false when the
// rating is not positive or no contest was played.
func InverseAdjustRating(rating float64, n int) (raw float64, ok bool) {
	if rating <= 0 || n < 1 {
		return math.NaN(), false
	}
	if rating <= squashPivot {
		rating = squashPivot * (1 - math.Log(squashPivot/rating))
	}
	adjustment := (math.Sqrt(1-math.Pow(ratingDecay, float64(2*n)))/(1-math.Pow(ratingDecay, float64(n))) - 1) /
		(math.Sqrt(19) - 1) * uncertaintyBonus
	return rating + adjustment, true
}
