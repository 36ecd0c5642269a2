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

type PlayerRepository struct {
	queries *db.Queries
	db      *sqlx.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sqlx.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns nil, nil when the player has never been stored.
func (r *PlayerRepository) Get(ctx context.Context, accountID int64) (*domain.Player, error) {
	player, err := r.queries.GetPlayer(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := toPlayer(player)
	return &p, nil
}

// GetOrCreate stores player unless a row with the same account id exists,
// then returns whatever is stored.
func (r *PlayerRepository) GetOrCreate(ctx context.Context, player domain.Player) (*domain.Player, error) {
	p, err := getOrCreatePlayer(ctx, r.queries, player)
	if err != nil {
		r.logger.Error().Err(err).Int64("player_id", player.AccountID).Msg("failed to get or create player")
		return nil, err
	}
	return p, nil
}

func getOrCreatePlayer(ctx context.Context, q *db.Queries, player domain.Player) (*domain.Player, error) {
	if err := q.InsertPlayerIfAbsent(ctx, playerParams(player)); err != nil {
		return nil, fmt.Errorf("failed to insert player %d: %w", player.AccountID, err)
	}
	stored, err := q.GetPlayer(ctx, player.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read player %d: %w", player.AccountID, err)
	}
	p := toPlayer(stored)
	return &p, nil
}
