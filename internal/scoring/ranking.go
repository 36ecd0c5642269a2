package scoring

import (
	"cmp"
	"dota-leaderboard/internal/domain"
	"slices"
	"strings"
)

type SortKey string

const (
	SortByWeek    SortKey = "W"
	SortByMonth   SortKey = "M"
	SortByYear    SortKey = "Y"
	SortByCount   SortKey = "C"
	SortByOverall SortKey = "O"
)

// ParseSortKey maps a request token to a key. Unknown or empty tokens sort
// by overall score.
func ParseSortKey(token string) SortKey {
	switch key := SortKey(strings.ToUpper(strings.TrimSpace(token))); key {
	case SortByWeek, SortByMonth, SortByYear, SortByCount:
		return key
	default:
		return SortByOverall
	}
}

func (k SortKey) value(s domain.MatchScore) float64 {
	switch k {
	case SortByWeek:
		return s.WeekScore
	case SortByMonth:
		return s.MonthScore
	case SortByYear:
		return s.YearScore
	case SortByCount:
		return float64(s.OverallCount)
	default:
		return s.OverallScore
	}
}

// Sort returns a copy of scores ordered descending by key. Equal values keep
// their input order.
func Sort(scores []domain.MatchScore, key SortKey) []domain.MatchScore {
	sorted := slices.Clone(scores)
	slices.SortStableFunc(sorted, func(a, b domain.MatchScore) int {
		return cmp.Compare(key.value(b), key.value(a))
	})
	return sorted
}

// Compare is positive when a ranks ahead of b. The count term is normalized
// against the larger of the two match counts.
func Compare(a, b domain.MatchScore) float64 {
	maxCount := max(a.OverallCount, b.OverallCount)
	return compareScore(a, maxCount) - compareScore(b, maxCount)
}

func compareScore(s domain.MatchScore, maxCount int) float64 {
	return CompareScore(s.OverallCount, s.WeekScore, s.MonthScore, s.YearScore, maxCount)
}

// BestHero picks the highest overall score, preferring the newer row on a
// tie.
func BestHero(scores []domain.HeroScore) (domain.HeroScore, bool) {
	if len(scores) == 0 {
		return domain.HeroScore{}, false
	}
	best := slices.MaxFunc(scores, func(a, b domain.HeroScore) int {
		if c := cmp.Compare(a.OverallScore, b.OverallScore); c != 0 {
			return c
		}
		return a.ScoreDate.Compare(b.ScoreDate)
	})
	return best, true
}
