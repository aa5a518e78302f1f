package back

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// StabilizationPoint is the absolute rating movement of one match, in
// chronological order. A ladder whose magnitudes shrink over time is
// converging on stable ratings.
type StabilizationPoint struct {
	MatchNumber     int
	ChangeMagnitude int
}

// CalibrationBucket compares predicted and observed win rates for matches
// whose pre-match average-rating gap fell in one band.
type CalibrationBucket struct {
	Range   string
	Matches int

	// ExpectedWinRate is the mean Elo win probability of the favored side,
	// ActualWinRate the frequency it actually won, both in percent. Gap is
	// actual minus expected: positive means ratings undersell the favorite.
	ExpectedWinRate float64
	ActualWinRate   float64
	Gap             float64
}

// CalibrationReport is the read-only health check of a guild's ladder.
type CalibrationReport struct {
	MatchesAnalyzed int

	Stabilization       []StabilizationPoint
	AvgChangeFirstHalf  float64
	AvgChangeSecondHalf float64

	Buckets []CalibrationBucket

	// Share of matches (in percent) won by the higher-rated side, matches
	// with exactly equal averages excluded. Recent covers the most recent
	// quartile of history to surface drift.
	OverallAccuracy float64
	RecentAccuracy  float64
	RecentMatches   int
}

// calibrationBands are the |avg(blue)-avg(red)| bands, upper bound
// inclusive, the last band unbounded.
var calibrationBands = []struct { // nolint:gochecknoglobals
	label string
	min   int
	max   int
}{
	{"0-25", 0, 25},
	{"26-50", 26, 50},
	{"51-75", 51, 75},
	{"76-100", 76, 100},
	{"101+", 101, 1 << 30},
}

// GetCalibrationReport aggregates the guild's whole match history. It never
// mutates anything; an empty history yields a zeroed report, not an error.
func (b *Back) GetCalibrationReport(guildID string) (CalibrationReport, error) {
	start := time.Now()
	defer func() { log.Printf("info: computed calibration report in %s", time.Since(start)) }()

	var matches []Match
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		matches, err = getMatchesByGuild(tx, guildID)
		return err
	}); err != nil {
		return CalibrationReport{}, err
	}

	report := CalibrationReport{MatchesAnalyzed: len(matches)}
	if len(matches) == 0 {
		return report, nil
	}

	report.Stabilization = stabilizationSeries(matches)
	report.AvgChangeFirstHalf, report.AvgChangeSecondHalf = halfMeans(matches)

	buckets, err := calibrationBuckets(matches)
	if err != nil {
		return CalibrationReport{}, err
	}
	report.Buckets = buckets

	report.OverallAccuracy = favoredWinRate(matches)
	recent := matches[len(matches)-recentWindow(len(matches)):]
	report.RecentMatches = len(recent)
	report.RecentAccuracy = favoredWinRate(recent)

	return report, nil
}

func stabilizationSeries(matches []Match) []StabilizationPoint {
	ret := make([]StabilizationPoint, 0, len(matches))
	for k := range matches {
		ret = append(ret, StabilizationPoint{
			MatchNumber:     k + 1,
			ChangeMagnitude: matches[k].RatingChange,
		})
	}

	return ret
}

// halfMeans returns the mean delta magnitude over the first and second half
// of history, the comparison that tells whether ratings are settling.
func halfMeans(matches []Match) (first, second float64) {
	mid := len(matches) / 2

	mean := func(s []Match) float64 {
		if len(s) == 0 {
			return 0
		}
		total := 0
		for k := range s {
			total += s[k].RatingChange
		}
		return float64(total) / float64(len(s))
	}

	return mean(matches[:mid]), mean(matches[mid:])
}

// calibrationBuckets bins matches by pre-match rating gap. Matches with
// exactly equal averages have no favored side and are skipped.
func calibrationBuckets(matches []Match) ([]CalibrationBucket, error) {
	type acc struct {
		matches     int
		expectedSum float64
		favoredWins int
	}
	accs := make([]acc, len(calibrationBands))

	for k := range matches {
		diff := matches[k].BlueAvgRating - matches[k].RedAvgRating
		if diff == 0 {
			continue
		}

		favored, other := SideBlue, SideRed
		if diff < 0 {
			favored, other = SideRed, SideBlue
			diff = -diff
		}

		avg := map[Side]float64{
			SideBlue: float64(matches[k].BlueAvgRating),
			SideRed:  float64(matches[k].RedAvgRating),
		}
		expected, err := expectedScore(avg[favored], avg[other])
		if err != nil {
			return nil, err
		}

		for i, band := range calibrationBands {
			if diff < band.min || diff > band.max {
				continue
			}

			accs[i].matches++
			accs[i].expectedSum += expected
			if matches[k].Winner == favored {
				accs[i].favoredWins++
			}
			break
		}
	}

	ret := make([]CalibrationBucket, 0, len(calibrationBands))
	for i, band := range calibrationBands {
		bucket := CalibrationBucket{Range: band.label, Matches: accs[i].matches}
		if accs[i].matches > 0 {
			bucket.ExpectedWinRate = 100 * accs[i].expectedSum / float64(accs[i].matches)
			bucket.ActualWinRate = 100 * float64(accs[i].favoredWins) / float64(accs[i].matches)
			bucket.Gap = bucket.ActualWinRate - bucket.ExpectedWinRate
		}
		ret = append(ret, bucket)
	}

	return ret, nil
}

// favoredWinRate is the percentage of matches won by the higher-rated side,
// ties in average rating excluded.
func favoredWinRate(matches []Match) float64 {
	var decided, won int
	for k := range matches {
		diff := matches[k].BlueAvgRating - matches[k].RedAvgRating
		if diff == 0 {
			continue
		}

		decided++
		if (diff > 0) == (matches[k].Winner == SideBlue) {
			won++
		}
	}

	if decided == 0 {
		return 0
	}

	return 100 * float64(won) / float64(decided)
}

func recentWindow(n int) int {
	if n < 4 {
		return n
	}

	return n / 4
}
