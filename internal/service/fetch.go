package service

import (
	"context"
	"dota-leaderboard/internal/api"
	"dota-leaderboard/internal/config"
	"dota-leaderboard/internal/constants"
	"dota-leaderboard/internal/domain"
	"dota-leaderboard/internal/metrics"
	"dota-leaderboard/internal/repository"
	"dota-leaderboard/internal/scoring"
	"errors"
	"fmt"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	kindMatch = "match"
	kindHero  = "hero"
)

type StatsProvider interface {
	GetPlayer(ctx context.Context, accountID int64) (*api.PlayerResponse, error)
	GetWinLoss(ctx context.Context, accountID int64, days int) (*api.WinLoss, error)
	GetHeroRankings(ctx context.Context, accountID int64) ([]api.HeroRanking, error)
	GetPlayerHeroes(ctx context.Context, accountID int64) ([]api.PlayerHero, error)
	GetHeroes(ctx context.Context) ([]api.HeroInfo, error)
}

// FetchService computes scores from the stats provider on a cache miss and
// persists them. Each player is all-or-nothing: a score is stored only when
// every provider call for that player succeeded.
type FetchService struct {
	stats       StatsProvider
	matchScores *repository.MatchScoreRepository
	heroScores  *repository.HeroScoreRepository
	metrics     *metrics.Metrics
	workers     int
	inflight    singleflight.Group
	logger      zerolog.Logger
}

func NewFetchService(stats StatsProvider, matchScores *repository.MatchScoreRepository, heroScores *repository.HeroScoreRepository, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *FetchService {
	workers := cfg.FetchWorkers
	if workers <= 0 {
		workers = constants.DefaultFetchWorkers
	}
	return &FetchService{
		stats:       stats,
		matchScores: matchScores,
		heroScores:  heroScores,
		metrics:     m,
		workers:     workers,
		logger:      logger,
	}
}

// detach gives a deduplicated fetch its own deadline so that one caller
// going away cannot fail the others waiting on the same key.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
}

type winLossWindows struct {
	week, month, year, lifetime *api.WinLoss
}

// FetchMatchScore pulls the profile and the four win/loss windows for one
// player, normalizes them and stores the day's score.
func (s *FetchService) FetchMatchScore(ctx context.Context, playerID int64, day time.Time) (*domain.MatchScore, error) {
	key := fmt.Sprintf("%s:%d:%s", kindMatch, playerID, day.Format(domain.DateLayout))
	v, err, shared := s.inflight.Do(key, func() (any, error) {
		sharedCtx, cancel := detach(ctx)
		defer cancel()
		return s.fetchMatchScore(sharedCtx, playerID, day)
	})
	if shared {
		s.logger.Debug().Int64("player_id", playerID).Msg("joined in-flight match score fetch")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.MatchScore), nil
}

func (s *FetchService) fetchMatchScore(ctx context.Context, playerID int64, day time.Time) (*domain.MatchScore, error) {
	log := s.logger.With().Int64("player_id", playerID).Str("kind", kindMatch).Logger()

	var (
		profile *api.PlayerResponse
		wl      winLossWindows
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.stats.GetPlayer(gCtx, playerID)
		return err
	})
	windows := []struct {
		days int
		dst  **api.WinLoss
	}{
		{constants.WeekWindow, &wl.week},
		{constants.MonthWindow, &wl.month},
		{constants.YearWindow, &wl.year},
		{constants.LifetimeWindow, &wl.lifetime},
	}
	for _, w := range windows {
		g.Go(func() (err error) {
			*w.dst, err = s.stats.GetWinLoss(gCtx, playerID, w.days)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.fetchFailed(log, kindMatch, playerID, err)
	}

	player := playerFromProfile(playerID, profile.Profile, log)
	score := domain.MatchScore{
		PlayerID:     playerID,
		WeekScore:    scoring.Ratio(wl.week.Win, wl.week.Lose),
		MonthScore:   scoring.Ratio(wl.month.Win, wl.month.Lose),
		YearScore:    scoring.Ratio(wl.year.Win, wl.year.Lose),
		OverallScore: scoring.Ratio(wl.lifetime.Win, wl.lifetime.Lose),
		OverallCount: scoring.MatchOverallCount(wl.lifetime.Win, wl.lifetime.Lose),
		ScoreDate:    day,
		Player:       player,
	}

	stored, err := s.matchScores.Save(ctx, player, score)
	if err != nil {
		s.metrics.Fetch(kindMatch, metrics.OutcomePersistError)
		log.Error().Err(err).Msg("failed to persist match score")
		return nil, crerr.Wrapf(err, "persist match score for player %d", playerID)
	}

	s.metrics.Fetch(kindMatch, metrics.OutcomeOK)
	log.Info().
		Float64("overall_score", stored.OverallScore).
		Int("overall_count", stored.OverallCount).
		Msg("match score fetched")
	return stored, nil
}

// FetchHeroScores pulls rankings, per-hero history, the hero catalog and the
// profile for one player and stores one score per catalog hero.
func (s *FetchService) FetchHeroScores(ctx context.Context, playerID int64, day time.Time) ([]domain.HeroScore, error) {
	key := fmt.Sprintf("%s:%d:%s", kindHero, playerID, day.Format(domain.DateLayout))
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		sharedCtx, cancel := detach(ctx)
		defer cancel()
		return s.fetchHeroScores(sharedCtx, playerID, day)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.HeroScore), nil
}

func (s *FetchService) fetchHeroScores(ctx context.Context, playerID int64, day time.Time) ([]domain.HeroScore, error) {
	log := s.logger.With().Int64("player_id", playerID).Str("kind", kindHero).Logger()

	var (
		rankings []api.HeroRanking
		history  []api.PlayerHero
		catalog  []api.HeroInfo
		profile  *api.PlayerResponse
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rankings, err = s.stats.GetHeroRankings(gCtx, playerID)
		return err
	})
	g.Go(func() (err error) {
		history, err = s.stats.GetPlayerHeroes(gCtx, playerID)
		return err
	})
	g.Go(func() (err error) {
		catalog, err = s.stats.GetHeroes(gCtx)
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.stats.GetPlayer(gCtx, playerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, s.fetchFailed(log, kindHero, playerID, err)
	}

	player := playerFromProfile(playerID, profile.Profile, log)
	heroes, scores := buildHeroScores(playerID, day, rankings, history, catalog)

	stored, err := s.heroScores.Save(ctx, player, heroes, scores, day)
	if err != nil {
		s.metrics.Fetch(kindHero, metrics.OutcomePersistError)
		log.Error().Err(err).Msg("failed to persist hero scores")
		return nil, crerr.Wrapf(err, "persist hero scores for player %d", playerID)
	}

	s.metrics.Fetch(kindHero, metrics.OutcomeOK)
	log.Info().Int("heroes", len(stored)).Msg("hero scores fetched")
	return stored, nil
}

// buildHeroScores joins rankings and per-hero history onto the catalog by
// hero id. A hero missing from either source scores 0 for that part.
func buildHeroScores(playerID int64, day time.Time, rankings []api.HeroRanking, history []api.PlayerHero, catalog []api.HeroInfo) ([]domain.Hero, []domain.HeroScore) {
	rankByHero := make(map[int64]float64, len(rankings))
	for _, r := range rankings {
		rankByHero[int64(r.HeroID)] = r.PercentRank
	}
	historyByHero := make(map[int64]api.PlayerHero, len(history))
	for _, h := range history {
		historyByHero[int64(h.HeroID)] = h
	}

	heroes := make([]domain.Hero, 0, len(catalog))
	scores := make([]domain.HeroScore, 0, len(catalog))
	for _, info := range catalog {
		heroID := int64(info.ID)
		heroes = append(heroes, domain.Hero{
			HeroID:        heroID,
			Name:          info.Name,
			LocalizedName: info.LocalizedName,
			PrimaryAttr:   info.PrimaryAttr,
			AttackType:    info.AttackType,
			Roles:         info.Roles,
			Legs:          info.Legs,
		})

		var winScore, lastPlayedScore float64
		if h, ok := historyByHero[heroID]; ok {
			winScore = scoring.DigitScale(int64(h.Win))
			lastPlayedScore = scoring.DigitScale(h.LastPlayed)
		}
		rankScore := rankByHero[heroID]

		scores = append(scores, domain.HeroScore{
			PlayerID:        playerID,
			HeroID:          heroID,
			RankScore:       rankScore,
			LastPlayedScore: lastPlayedScore,
			WinScore:        winScore,
			OverallScore:    scoring.HeroOverallScore(rankScore, winScore, lastPlayedScore),
			ScoreDate:       day,
		})
	}
	return heroes, scores
}

// FetchBatch fetches match scores for playerIDs on a bounded pool. Players
// that fail are left out of the result. The returned error joins failures
// other than missing provider data (malformed payloads, storage errors) and
// is set even when some players succeeded.
func (s *FetchService) FetchBatch(ctx context.Context, playerIDs []int64, day time.Time) ([]domain.MatchScore, error) {
	results := make([]*domain.MatchScore, len(playerIDs))

	var (
		mu      sync.Mutex
		defects []error
	)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, id := range playerIDs {
		g.Go(func() error {
			score, err := s.FetchMatchScore(ctx, id, day)
			if err != nil {
				if !crerr.Is(err, ErrPlayerUnavailable) {
					mu.Lock()
					defects = append(defects, err)
					mu.Unlock()
				}
				return nil
			}
			results[i] = score
			return nil
		})
	}
	_ = g.Wait()

	scores := make([]domain.MatchScore, 0, len(playerIDs))
	for _, r := range results {
		if r != nil {
			scores = append(scores, *r)
		}
	}

	s.logger.Debug().
		Int("requested", len(playerIDs)).
		Int("fetched", len(scores)).
		Int("defects", len(defects)).
		Msg("batch fetch finished")

	return scores, errors.Join(defects...)
}

func (s *FetchService) fetchFailed(log zerolog.Logger, kind string, playerID int64, err error) error {
	if crerr.Is(err, api.ErrMalformedPayload) {
		s.metrics.Fetch(kind, metrics.OutcomeMalformed)
		log.Error().Err(err).Msg("provider returned a malformed payload, nothing stored")
		return crerr.Wrapf(err, "player %d", playerID)
	}
	s.metrics.Fetch(kind, metrics.OutcomeUnavailable)
	log.Warn().Err(err).Msg("provider data unavailable, nothing stored")
	return crerr.Wrapf(ErrPlayerUnavailable, "player %d: %v", playerID, err)
}

func playerFromProfile(playerID int64, p *api.Profile, log zerolog.Logger) domain.Player {
	if p.AccountID != playerID {
		log.Warn().Int64("profile_account_id", p.AccountID).Msg("profile account id differs from requested id")
	}
	return domain.Player{
		AccountID:   playerID,
		SteamID:     p.SteamID,
		PersonaName: p.PersonaName,
		Name:        p.Name,
		Avatar:      p.Avatar,
	}
}
