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

type HeroScoreRepository struct {
	queries *db.Queries
	db      *sqlx.DB
	logger  zerolog.Logger
}

func NewHeroScoreRepository(sqlDB *sqlx.DB, queries *db.Queries, logger zerolog.Logger) *HeroScoreRepository {
	return &HeroScoreRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *HeroScoreRepository) GetForDay(ctx context.Context, playerID int64, day time.Time) ([]domain.HeroScore, error) {
	rows, err := r.queries.ListHeroScoresForDay(ctx, playerID, formatDay(day))
	if err != nil {
		r.logger.Error().Err(err).Int64("player_id", playerID).Msg("failed to list hero scores")
		return nil, err
	}

	scores := make([]domain.HeroScore, len(rows))
	for i, row := range rows {
		scores[i] = toHeroScore(row)
	}
	return scores, nil
}

// GetBest returns the stored row with the highest overall score, newest
// first on ties, or nil, nil when the player has none.
func (r *HeroScoreRepository) GetBest(ctx context.Context, playerID int64) (*domain.HeroScore, error) {
	row, err := r.queries.GetBestHeroScore(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	score := toHeroScore(row)
	return &score, nil
}

// Save stores the player, every catalog hero and the hero scores in one
// transaction, then returns the rows stored for the scores' day.
func (r *HeroScoreRepository) Save(ctx context.Context, player domain.Player, heroes []domain.Hero, scores []domain.HeroScore, day time.Time) ([]domain.HeroScore, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if _, err := getOrCreatePlayer(ctx, qtx, player); err != nil {
		return nil, err
	}
	for _, hero := range heroes {
		if _, err := getOrCreateHero(ctx, qtx, hero); err != nil {
			return nil, err
		}
	}

	scoreDate := formatDay(day)
	for _, score := range scores {
		id := score.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		err := qtx.InsertHeroScore(ctx, db.HeroScore{
			HeroScoreID:     id,
			PlayerID:        player.AccountID,
			HeroID:          score.HeroID,
			RankScore:       score.RankScore,
			LastPlayedScore: score.LastPlayedScore,
			WinScore:        score.WinScore,
			OverallScore:    score.OverallScore,
			ScoreDate:       scoreDate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert hero score %d/%d: %w", player.AccountID, score.HeroID, err)
		}
	}

	rows, err := qtx.ListHeroScoresForDay(ctx, player.AccountID, scoreDate)
	if err != nil {
		return nil, fmt.Errorf("failed to read hero scores for player %d: %w", player.AccountID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit hero scores for player %d: %w", player.AccountID, err)
	}

	stored := make([]domain.HeroScore, len(rows))
	for i, row := range rows {
		stored[i] = toHeroScore(row)
	}
	return stored, nil
}
