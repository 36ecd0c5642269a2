package scoring

import (
	"dota-leaderboard/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SortByWeek, ParseSortKey("W"))
	assert.Equal(t, SortByMonth, ParseSortKey("m"))
	assert.Equal(t, SortByYear, ParseSortKey(" y "))
	assert.Equal(t, SortByCount, ParseSortKey("C"))
	assert.Equal(t, SortByOverall, ParseSortKey("O"))
	assert.Equal(t, SortByOverall, ParseSortKey(""))
	assert.Equal(t, SortByOverall, ParseSortKey("week"))
}

func TestSort_ByKey(t *testing.T) {
	t.Parallel()

	scores := []domain.MatchScore{
		{PlayerID: 1, WeekScore: 0.1, MonthScore: 0.9, YearScore: 0.5, OverallScore: 0.3, OverallCount: 30},
		{PlayerID: 2, WeekScore: 0.9, MonthScore: 0.1, YearScore: 0.3, OverallScore: 0.5, OverallCount: 10},
		{PlayerID: 3, WeekScore: 0.5, MonthScore: 0.5, YearScore: 0.9, OverallScore: 0.1, OverallCount: 20},
	}

	tests := []struct {
		key  SortKey
		want []int64
	}{
		{key: SortByWeek, want: []int64{2, 3, 1}},
		{key: SortByMonth, want: []int64{1, 3, 2}},
		{key: SortByYear, want: []int64{3, 1, 2}},
		{key: SortByCount, want: []int64{1, 3, 2}},
		{key: SortByOverall, want: []int64{2, 1, 3}},
	}

	for _, tt := range tests {
		got := Sort(scores, tt.key)
		ids := make([]int64, len(got))
		for i, s := range got {
			ids[i] = s.PlayerID
		}
		assert.Equal(t, tt.want, ids, "key=%s", tt.key)
	}

	assert.Equal(t, int64(1), scores[0].PlayerID, "input must not be reordered")
}

func TestSort_Stable(t *testing.T) {
	t.Parallel()

	scores := []domain.MatchScore{
		{PlayerID: 7, WeekScore: 0.5},
		{PlayerID: 3, WeekScore: 0.5},
	}

	got := Sort(scores, SortByWeek)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].PlayerID)
	assert.Equal(t, int64(3), got[1].PlayerID)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := domain.MatchScore{OverallScore: 0.5313, OverallCount: 10, WeekScore: 0.5, MonthScore: 0.6, YearScore: 0.3}
	b := domain.MatchScore{OverallScore: 0.4313, OverallCount: 100, WeekScore: 0.6, MonthScore: 0.5, YearScore: 0.2}

	// a: 0.08 + 0.05 + 0.03 + 0.015, b: 0.8 + 0.06 + 0.025 + 0.01
	assert.InDelta(t, -0.72, Compare(a, b), 1e-9)
	assert.InDelta(t, 0.72, Compare(b, a), 1e-9)
	assert.InDelta(t, 0.0, Compare(a, a), 1e-12)
}

func TestCompare_BothZeroCounts(t *testing.T) {
	t.Parallel()

	a := domain.MatchScore{WeekScore: 1}
	b := domain.MatchScore{}
	assert.InDelta(t, 0.1, Compare(a, b), 1e-12)
}

func TestBestHero(t *testing.T) {
	t.Parallel()

	_, ok := BestHero(nil)
	assert.False(t, ok)

	older := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 1)
	scores := []domain.HeroScore{
		{HeroID: 1, OverallScore: 0.4, ScoreDate: newer},
		{HeroID: 2, OverallScore: 0.7, ScoreDate: older},
		{HeroID: 3, OverallScore: 0.7, ScoreDate: newer},
		{HeroID: 4, OverallScore: 0.2, ScoreDate: newer},
	}

	best, ok := BestHero(scores)
	require.True(t, ok)
	assert.Equal(t, int64(3), best.HeroID)
}
