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

type LeaderboardService struct {
	fetch       *FetchService
	matchScores *repository.MatchScoreRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

func NewLeaderboardService(fetch *FetchService, matchScores *repository.MatchScoreRepository, m *metrics.Metrics, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		fetch:       fetch,
		matchScores: matchScores,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

type Comparison struct {
	Result  float64
	Player1 domain.MatchScore
	Player2 domain.MatchScore
}

func (c Comparison) ToView() map[string]any {
	return map[string]any{
		"result":  c.Result,
		"player1": c.Player1.ToView(),
		"player2": c.Player2.ToView(),
	}
}

func ValidateCohort(playerIDs []int64) error {
	if len(playerIDs) < constants.MinCohortSize || len(playerIDs) > constants.MaxCohortSize {
		return crerr.Wrapf(ErrInvalidCohort, "expected %d to %d player ids, got %d",
			constants.MinCohortSize, constants.MaxCohortSize, len(playerIDs))
	}
	for _, id := range playerIDs {
		if id <= 0 {
			return crerr.Wrapf(ErrInvalidCohort, "player id %d", id)
		}
	}
	return nil
}

// Scores returns today's score for each requested player that has one,
// reading the store first and fetching only the misses.
func (s *LeaderboardService) Scores(ctx context.Context, playerIDs []int64) ([]domain.MatchScore, error) {
	if err := ValidateCohort(playerIDs); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	day := domain.Day(s.now())

	cached, err := s.matchScores.GetForDay(ctx, playerIDs, day)
	if err != nil {
		return nil, crerr.Wrap(err, "read cached match scores")
	}

	missing := repository.MissingIDs(playerIDs, cached)
	s.metrics.CacheHits(kindMatch, len(cached))
	s.metrics.CacheMisses(kindMatch, len(missing))

	s.logger.Debug().
		Ints64("player_ids", playerIDs).
		Int("cached", len(cached)).
		Ints64("missing", missing).
		Msg("score cache lookup")

	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := s.fetch.FetchBatch(ctx, missing, day)
	if err != nil {
		s.logger.Error().Err(err).Ints64("missing", missing).Msg("score fetch reported defects")
	}

	return append(cached, fetched...), nil
}

// Leaderboard returns the cohort's scores ordered by the sort token.
func (s *LeaderboardService) Leaderboard(ctx context.Context, playerIDs []int64, sortToken string) ([]domain.MatchScore, error) {
	scores, err := s.Scores(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrNoScores
	}

	key := scoring.ParseSortKey(sortToken)
	s.logger.Info().Int("scores", len(scores)).Str("sort", string(key)).Msg("leaderboard built")
	return scoring.Sort(scores, key), nil
}

// Compare scores p1 against p2. A positive result means p1 ranks ahead.
// A player with no score today is compared on their newest stored score.
func (s *LeaderboardService) Compare(ctx context.Context, p1, p2 int64) (*Comparison, error) {
	scores, err := s.Scores(ctx, []int64{p1, p2})
	if err != nil {
		return nil, err
	}

	s1, err := s.scoreOrLatest(ctx, scores, p1)
	if err != nil {
		return nil, err
	}
	s2, err := s.scoreOrLatest(ctx, scores, p2)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Result:  scoring.Compare(s1, s2),
		Player1: s1,
		Player2: s2,
	}, nil
}

func (s *LeaderboardService) scoreOrLatest(ctx context.Context, scores []domain.MatchScore, playerID int64) (domain.MatchScore, error) {
	if score, ok := findScore(scores, playerID); ok {
		return score, nil
	}
	latest, err := s.matchScores.GetLatest(ctx, playerID)
	if err != nil {
		return domain.MatchScore{}, crerr.Wrapf(err, "read latest match score for player %d", playerID)
	}
	if latest == nil {
		return domain.MatchScore{}, crerr.Wrapf(ErrNoScores, "player %d", playerID)
	}
	s.logger.Warn().
		Int64("player_id", playerID).
		Str("score_date", latest.ScoreDate.Format(domain.DateLayout)).
		Msg("no score today, comparing on latest stored score")
	return *latest, nil
}

func findScore(scores []domain.MatchScore, playerID int64) (domain.MatchScore, bool) {
	for _, s := range scores {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	return domain.MatchScore{}, false
}
