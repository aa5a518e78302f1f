package back

import "math"

// KFactor is the Elo sensitivity constant: how many rating points a match
// can move at most. 32 is the classic "fast ladder" value, changing it
// rescales every stored delta so don't.
const KFactor = 32

// eloDivisor spreads expected scores over rating gaps, a 400 points gap
// gives the stronger side 10:1 odds.
const eloDivisor = 400

// expectedScore returns the logistic win probability of a rating a side
// against a rating b side, in (0, 1). It is symmetric:
// expectedScore(a,b) + expectedScore(b,a) == 1.
func expectedScore(a, b float64) (float64, error) {
	if err := checkFinite("ratingA", a); err != nil {
		return 0, err
	}
	if err := checkFinite("ratingB", b); err != nil {
		return 0, err
	}

	return 1.0 / (1.0 + math.Pow(10, (b-a)/eloDivisor)), nil
}

// ratingDelta returns the signed rating change for the "a" side given the
// actual outcome (1.0 win, 0.0 loss, draws unsupported). The result is
// rounded half away from zero (math.Round), and the opposing side's delta
// is always the exact negation, making every rating transfer zero-sum.
func ratingDelta(a, b, actual float64) (int, error) {
	if err := checkFinite("actualScore", actual); err != nil {
		return 0, err
	}

	expected, err := expectedScore(a, b)
	if err != nil {
		return 0, err
	}

	return int(math.Round(KFactor * (actual - expected))), nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNonFinite{Field: field, Value: v}
	}

	return nil
}
