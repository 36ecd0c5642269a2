package api

import (
	"context"
	"dota-leaderboard/internal/config"
	"dota-leaderboard/internal/metrics"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path  string
	query map[string]string
}

type stubProvider struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]string
}

func (s *stubProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{path: r.URL.Path, query: q})
	s.mu.Unlock()

	body, ok := s.routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Rate-Limit-Remaining-Minute", "42")
	w.Write([]byte(body))
}

func (s *stubProvider) last() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, routes map[string]string) (*OpenDotaClient, *stubProvider) {
	t.Helper()
	stub := &stubProvider{routes: routes}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		OpenDotaBaseURL: srv.URL + "/api",
		RatePerMinute:   6000,
	}
	return NewOpenDotaClient(cfg, metrics.New(), zerolog.Nop()), stub
}

func TestFetch_ReturnsBody(t *testing.T) {
	c, stub := newTestClient(t, map[string]string{"/api/heroes": `[]`})

	body, err := c.Fetch(t.Context(), "heroes", map[string]string{"x": "1"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, "1", stub.last().query["x"])
	assert.Equal(t, 42, c.RateLimitInfo().RemainingMinute)
}

func TestFetch_NonSuccessIsNoData(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{})

	body, err := c.Fetch(t.Context(), "players/1", nil)
	assert.Nil(t, body)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetch_UnreachableIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOpenDotaClient(&config.Config{OpenDotaBaseURL: url, RatePerMinute: 60}, nil, zerolog.Nop())
	_, err := c.Fetch(t.Context(), "heroes", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetch_SlowProviderIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewOpenDotaClient(&config.Config{OpenDotaBaseURL: srv.URL, RatePerMinute: 60}, nil, zerolog.Nop())
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, "heroes", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGetPlayer(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"/api/players/1": `{"profile":{"account_id":1,"steamid":"76561197960265729","personaname":"p1","name":null,"avatarfull":"p1.jpg"},"rank_tier":null}`,
		"/api/players/2": `{"profile":null}`,
		"/api/players/3": `{"profile":`,
	})

	resp, err := c.GetPlayer(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Profile.AccountID)
	assert.Equal(t, "p1", resp.Profile.PersonaName)
	assert.Equal(t, "", resp.Profile.Name)
	assert.Equal(t, "p1.jpg", resp.Profile.Avatar)

	_, err = c.GetPlayer(t.Context(), 2)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = c.GetPlayer(t.Context(), 3)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestGetWinLoss_DateWindow(t *testing.T) {
	c, stub := newTestClient(t, map[string]string{
		"/api/players/1/wl": `{"win":1,"lose":3}`,
		"/api/players/2/wl": `{"win":-1,"lose":3}`,
	})

	got, err := c.GetWinLoss(t.Context(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, WinLoss{Win: 1, Lose: 3}, *got)
	assert.Equal(t, "7", stub.last().query["date"])

	_, err = c.GetWinLoss(t.Context(), 1, 0)
	require.NoError(t, err)
	assert.NotContains(t, stub.last().query, "date")

	_, err = c.GetWinLoss(t.Context(), 2, 30)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestHeroIDs_NormalizedAcrossEndpoints(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"/api/players/1/rankings": `[{"hero_id":1,"score":1520.5,"percent_rank":0.93,"card":1000}]`,
		"/api/players/1/heroes":   `[{"hero_id":"1","last_played":1570000000,"games":12,"win":9}]`,
		"/api/heroes":             `[{"id":1,"name":"npc_dota_hero_antimage","localized_name":"Anti-Mage","primary_attr":"agi","attack_type":"Melee","roles":["Carry","Escape"],"legs":2}]`,
	})

	rankings, err := c.GetHeroRankings(t.Context(), 1)
	require.NoError(t, err)
	heroes, err := c.GetPlayerHeroes(t.Context(), 1)
	require.NoError(t, err)
	catalog, err := c.GetHeroes(t.Context())
	require.NoError(t, err)

	require.Len(t, rankings, 1)
	require.Len(t, heroes, 1)
	require.Len(t, catalog, 1)
	assert.Equal(t, HeroID(1), rankings[0].HeroID)
	assert.Equal(t, rankings[0].HeroID, heroes[0].HeroID)
	assert.Equal(t, heroes[0].HeroID, catalog[0].ID)
	assert.Equal(t, []string{"Carry", "Escape"}, catalog[0].Roles)
}

func TestHeroID_RejectsGarbage(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"/api/players/1/heroes":   `[{"hero_id":"abc","last_played":1,"games":1,"win":1}]`,
		"/api/players/2/rankings": `[{"hero_id":2,"percent_rank":1.5}]`,
	})

	_, err := c.GetPlayerHeroes(t.Context(), 1)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = c.GetHeroRankings(t.Context(), 2)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
