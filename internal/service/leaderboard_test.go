package service

import (
	"dota-leaderboard/internal/api"
	"dota-leaderboard/internal/domain"
	"dota-leaderboard/internal/scoring"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerIDs(scores []domain.MatchScore) []int64 {
	ids := make([]int64, len(scores))
	for i, s := range scores {
		ids[i] = s.PlayerID
	}
	return ids
}

func TestLeaderboard_SecondCallIsFullCacheHit(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 3), wl(1, 1), wl(1, 0), wl(10, 90))
	f.stats.addPlayer(2, "player2", wl(3, 1), wl(1, 1), wl(0, 1), wl(30, 20))

	first, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2}, "")
	require.NoError(t, err)
	require.Len(t, first, 2)
	callsAfterFirst := f.stats.calls.Load()
	assert.Equal(t, int64(10), callsAfterFirst)

	second, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2}, "")
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, f.stats.calls.Load(), "second call must not reach the provider")
	assert.Equal(t, playerIDs(first), playerIDs(second))
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestLeaderboard_FetchesOnlyMisses(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 3), wl(1, 1), wl(1, 0), wl(10, 90))
	f.stats.addPlayer(2, "player2", wl(3, 1), wl(1, 1), wl(0, 1), wl(30, 20))

	_, err := f.leaderboard.Leaderboard(t.Context(), []int64{1}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.stats.calls.Load())

	scores, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2}, "")
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Equal(t, int64(10), f.stats.calls.Load())
}

func TestLeaderboard_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 3), wl(1, 1), wl(1, 0), wl(10, 90))
	f.stats.addPlayer(3, "player3", wl(3, 1), wl(1, 1), wl(0, 1), wl(30, 20))

	scores, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2, 3}, "O")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, playerIDs(scores))
	for _, s := range scores {
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Player.Name)
	}
}

func TestLeaderboard_SortsByKey(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 3), wl(1, 1), wl(1, 0), wl(10, 90))
	f.stats.addPlayer(2, "player2", wl(3, 1), wl(1, 3), wl(0, 1), wl(30, 20))

	byWeek, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2}, "w")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, playerIDs(byWeek))

	byYear, err := f.leaderboard.Leaderboard(t.Context(), []int64{1, 2}, "Y")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, playerIDs(byYear))

	byCount, err := f.leaderboard.Leaderboard(t.Context(), []int64{2, 1}, "C")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, playerIDs(byCount))
}

func TestLeaderboard_NoScores(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaderboard.Leaderboard(t.Context(), []int64{3}, "")
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestLeaderboard_InvalidCohort(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaderboard.Leaderboard(t.Context(), nil, "")
	assert.ErrorIs(t, err, ErrInvalidCohort)

	_, err = f.leaderboard.Leaderboard(t.Context(), []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, "")
	assert.ErrorIs(t, err, ErrInvalidCohort)

	_, err = f.leaderboard.Leaderboard(t.Context(), []int64{1, -2}, "")
	assert.ErrorIs(t, err, ErrInvalidCohort)

	assert.Zero(t, f.stats.calls.Load())
}

func TestCompare(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 1), wl(3, 2), wl(3, 7), wl(5, 5))
	f.stats.addPlayer(2, "player2", wl(3, 2), wl(1, 1), wl(1, 4), wl(40, 60))

	cmp, err := f.leaderboard.Compare(t.Context(), 1, 2)
	require.NoError(t, err)

	// 1: 0.1*0.8 + 0.5*0.1 + 0.6*0.05 + 0.3*0.05, 2: 1.0*0.8 + 0.6*0.1 + 0.5*0.05 + 0.2*0.05
	assert.InDelta(t, -0.72, cmp.Result, 1e-9)
	assert.Equal(t, int64(1), cmp.Player1.PlayerID)
	assert.Equal(t, int64(2), cmp.Player2.PlayerID)
	assert.InDelta(t, scoring.Compare(cmp.Player1, cmp.Player2), cmp.Result, 1e-12)

	view := cmp.ToView()
	assert.Contains(t, view, "result")
	assert.Contains(t, view, "player1")
}

func TestCompare_MissingPlayer(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 1), wl(3, 2), wl(3, 7), wl(5, 5))

	_, err := f.leaderboard.Compare(t.Context(), 1, 2)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestCompare_FallsBackToLatestStoredScore(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(1, "player1", wl(1, 1), wl(3, 2), wl(3, 7), wl(5, 5))
	f.stats.addPlayer(2, "player2", wl(3, 2), wl(1, 1), wl(1, 4), wl(40, 60))

	earlier := testDay.AddDate(0, 0, -2)
	_, err := f.fetch.FetchMatchScore(t.Context(), 2, earlier)
	require.NoError(t, err)

	// provider now has nothing for player 2
	delete(f.stats.players, 2)

	cmp, err := f.leaderboard.Compare(t.Context(), 1, 2)
	require.NoError(t, err)
	assert.True(t, cmp.Player1.ScoreDate.Equal(testDay))
	assert.True(t, cmp.Player2.ScoreDate.Equal(earlier))
	assert.InDelta(t, -0.72, cmp.Result, 1e-9)
}

func TestRecommend_FetchesThenCaches(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(5, "player5", wl(0, 0), wl(0, 0), wl(0, 0), wl(0, 0))
	f.stats.catalog = []api.HeroInfo{
		{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"},
		{ID: 2, Name: "npc_dota_hero_axe", LocalizedName: "Axe"},
	}
	p := f.stats.players[5]
	p.rankings = []api.HeroRanking{{HeroID: 2, PercentRank: 0.8}}
	p.heroes = []api.PlayerHero{{HeroID: 1, Win: 3, LastPlayed: 1}}
	f.stats.players[5] = p

	rec, err := f.recommend.Recommend(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Best.HeroID)
	assert.Equal(t, "Axe", rec.Best.Hero.LocalizedName)
	assert.Len(t, rec.Scores, 2)
	calls := f.stats.calls.Load()

	again, err := f.recommend.Recommend(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, rec.Best.ID, again.Best.ID)
	assert.Equal(t, calls, f.stats.calls.Load())
}

func TestRecommend_FallsBackToHistory(t *testing.T) {
	f := newFixture(t)
	f.stats.addPlayer(5, "player5", wl(0, 0), wl(0, 0), wl(0, 0), wl(0, 0))
	f.stats.catalog = []api.HeroInfo{{ID: 1, Name: "npc_dota_hero_antimage"}}
	p := f.stats.players[5]
	p.rankings = []api.HeroRanking{{HeroID: 1, PercentRank: 0.5}}
	f.stats.players[5] = p

	_, err := f.fetch.FetchHeroScores(t.Context(), 5, testDay.AddDate(0, 0, -3))
	require.NoError(t, err)

	f.stats.catalog = nil

	rec, err := f.recommend.Recommend(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Best.HeroID)
	assert.True(t, rec.Best.ScoreDate.Equal(testDay.AddDate(0, 0, -3)))

	_, err = f.recommend.Recommend(t.Context(), 6)
	assert.ErrorIs(t, err, ErrNoScores)
}
