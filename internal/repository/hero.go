package repository

import (
	"context"
	"database/sql"
	"dota-leaderboard/internal/db"
	"dota-leaderboard/internal/domain"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type HeroRepository struct {
	queries *db.Queries
	db      *sqlx.DB
	logger  zerolog.Logger
}

func NewHeroRepository(sqlDB *sqlx.DB, queries *db.Queries, logger zerolog.Logger) *HeroRepository {
	return &HeroRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns nil, nil when the hero is not in the stored catalog.
func (r *HeroRepository) Get(ctx context.Context, heroID int64) (*domain.Hero, error) {
	hero, err := r.queries.GetHero(ctx, heroID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h := toHero(hero)
	return &h, nil
}

func (r *HeroRepository) GetOrCreate(ctx context.Context, hero domain.Hero) (*domain.Hero, error) {
	h, err := getOrCreateHero(ctx, r.queries, hero)
	if err != nil {
		r.logger.Error().Err(err).Int64("hero_id", hero.HeroID).Msg("failed to get or create hero")
		return nil, err
	}
	return h, nil
}

func getOrCreateHero(ctx context.Context, q *db.Queries, hero domain.Hero) (*domain.Hero, error) {
	if err := q.InsertHeroIfAbsent(ctx, heroParams(hero)); err != nil {
		return nil, fmt.Errorf("failed to insert hero %d: %w", hero.HeroID, err)
	}
	stored, err := q.GetHero(ctx, hero.HeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to read hero %d: %w", hero.HeroID, err)
	}
	h := toHero(stored)
	return &h, nil
}
