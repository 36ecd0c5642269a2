package service

import (
	"context"
	"dota-leaderboard/internal/constants"
	"dota-leaderboard/internal/domain"
	"dota-leaderboard/internal/metrics"
	"dota-leaderboard/internal/repository"
	"dota-leaderboard/internal/scoring"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type RecommendService struct {
	fetch      *FetchService
	heroScores *repository.HeroScoreRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

func NewRecommendService(fetch *FetchService, heroScores *repository.HeroScoreRepository, m *metrics.Metrics, logger zerolog.Logger) *RecommendService {
	return &RecommendService{
		fetch:      fetch,
		heroScores: heroScores,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

type Recommendation struct {
	Best   domain.HeroScore
	Scores []domain.HeroScore
}

func (r Recommendation) ToView() map[string]any {
	scores := make([]map[string]any, len(r.Scores))
	for i, s := range r.Scores {
		scores[i] = s.ToView()
	}
	return map[string]any{
		"best":   r.Best.ToView(),
		"scores": scores,
	}
}

// Recommend picks the player's best hero from today's hero scores, fetching
// them on a miss. When the provider has nothing today the best stored score
// from an earlier day is used.
func (s *RecommendService) Recommend(ctx context.Context, playerID int64) (*Recommendation, error) {
	if playerID <= 0 {
		return nil, crerr.Wrapf(ErrInvalidCohort, "player id %d", playerID)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	day := domain.Day(s.now())
	log := s.logger.With().Int64("player_id", playerID).Logger()

	scores, err := s.heroScores.GetForDay(ctx, playerID, day)
	if err != nil {
		return nil, crerr.Wrap(err, "read cached hero scores")
	}

	if len(scores) > 0 {
		s.metrics.CacheHits(kindHero, 1)
	} else {
		s.metrics.CacheMisses(kindHero, 1)
		scores, err = s.fetch.FetchHeroScores(ctx, playerID, day)
		if err != nil {
			log.Warn().Err(err).Msg("hero score fetch failed, falling back to history")
			return s.fromHistory(ctx, playerID)
		}
	}

	best, ok := scoring.BestHero(scores)
	if !ok {
		return nil, crerr.Wrapf(ErrNoScores, "player %d", playerID)
	}

	log.Info().Int64("hero_id", best.HeroID).Float64("overall_score", best.OverallScore).Msg("hero recommended")
	return &Recommendation{Best: best, Scores: scores}, nil
}

func (s *RecommendService) fromHistory(ctx context.Context, playerID int64) (*Recommendation, error) {
	best, err := s.heroScores.GetBest(ctx, playerID)
	if err != nil {
		return nil, crerr.Wrap(err, "read best hero score")
	}
	if best == nil {
		return nil, crerr.Wrapf(ErrNoScores, "player %d", playerID)
	}
	return &Recommendation{Best: *best, Scores: []domain.HeroScore{*best}}, nil
}
