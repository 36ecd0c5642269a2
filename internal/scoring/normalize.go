// Package scoring turns raw win/loss and hero statistics into bounded
// scores and orders them across a cohort. Everything here is pure.
package scoring

// Hero blend weights.
const (
	heroRankWeight       = 0.5
	heroWinWeight        = 0.45
	heroLastPlayedWeight = 0.05
)

// Comparison blend weights.
const (
	compareCountWeight = 0.8
	compareWeekWeight  = 0.1
	compareMonthWeight = 0.05
	compareYearWeight  = 0.05
)

// Ratio is wins/(wins+losses), or 0 for a window with no games.
func Ratio(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0.0
	}
	return float64(wins) / float64(total)
}

func MatchOverallCount(wins, losses int) int {
	return wins + losses
}

func HeroOverallScore(rank, win, lastPlayed float64) float64 {
	return rank*heroRankWeight + win*heroWinWeight + lastPlayed*heroLastPlayedWeight
}

// CompareScore blends a player's match count, normalized against the
// largest count in the cohort, with the week/month/year ratios.
func CompareScore(overallCount int, week, month, year float64, maxCount int) float64 {
	var countTerm float64
	if maxCount > 0 {
		countTerm = float64(overallCount) / float64(maxCount)
	}
	return countTerm*compareCountWeight + week*compareWeekWeight + month*compareMonthWeight + year*compareYearWeight
}

// DigitScale divides n by 10^d where d is the number of decimal digits in
// n, so 9 -> 0.9 and 1570000000 -> 0.157. Negative input scales its
// magnitude.
func DigitScale(n int64) float64 {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return 0.0
	}
	divisor := 1.0
	for v := n; v > 0; v /= 10 {
		divisor *= 10
	}
	return float64(n) / divisor
}
