package repository

import (
	"context"
	"database/sql"
	"dota-leaderboard/internal/db"
	"dota-leaderboard/internal/domain"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchScoreRepository struct {
	queries *db.Queries
	db      *sqlx.DB
	logger  zerolog.Logger
}

func NewMatchScoreRepository(sqlDB *sqlx.DB, queries *db.Queries, logger zerolog.Logger) *MatchScoreRepository {
	return &MatchScoreRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// GetForDay returns the scores already stored for day among playerIDs.
// Reads never write; callers fetch the missing ones.
func (r *MatchScoreRepository) GetForDay(ctx context.Context, playerIDs []int64, day time.Time) ([]domain.MatchScore, error) {
	rows, err := r.queries.ListMatchScoresForDay(ctx, formatDay(day), playerIDs)
	if err != nil {
		r.logger.Error().Err(err).Ints64("player_ids", playerIDs).Msg("failed to list match scores")
		return nil, err
	}

	scores := make([]domain.MatchScore, len(rows))
	for i, row := range rows {
		scores[i] = toMatchScore(row)
	}
	return scores, nil
}

// GetLatest returns nil, nil when the player has no stored score.
func (r *MatchScoreRepository) GetLatest(ctx context.Context, playerID int64) (*domain.MatchScore, error) {
	row, err := r.queries.GetLatestMatchScore(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	score := toMatchScore(row)
	return &score, nil
}

// Save stores the player profile and the day's score in one transaction. If
// a score for the same player and day already exists it is kept and
// returned instead.
func (r *MatchScoreRepository) Save(ctx context.Context, player domain.Player, score domain.MatchScore) (*domain.MatchScore, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if _, err := getOrCreatePlayer(ctx, qtx, player); err != nil {
		return nil, err
	}

	id := score.ID
	if id == "" {
		id, err = gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	scoreDate := formatDay(score.ScoreDate)
	inserted, err := qtx.InsertMatchScore(ctx, db.MatchScore{
		MatchScoreID: id,
		PlayerID:     player.AccountID,
		WeekScore:    score.WeekScore,
		MonthScore:   score.MonthScore,
		YearScore:    score.YearScore,
		OverallScore: score.OverallScore,
		OverallCount: int64(score.OverallCount),
		ScoreDate:    scoreDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert match score for player %d: %w", player.AccountID, err)
	}
	if !inserted {
		r.logger.Debug().Int64("player_id", player.AccountID).Str("day", scoreDate).Msg("match score already stored for day")
	}

	row, err := qtx.GetMatchScoreForDay(ctx, player.AccountID, scoreDate)
	if err != nil {
		return nil, fmt.Errorf("failed to read match score for player %d: %w", player.AccountID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match score for player %d: %w", player.AccountID, err)
	}

	stored := toMatchScore(row)
	return &stored, nil
}

// MissingIDs returns the requested ids with no score in found, in request
// order and without duplicates.
func MissingIDs(requested []int64, found []domain.MatchScore) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, s := range found {
		have[s.PlayerID] = struct{}{}
	}

	missing := make([]int64, 0, len(requested))
	for _, id := range requested {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
