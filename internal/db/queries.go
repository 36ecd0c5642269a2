package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type DBTX interface {
	sqlx.ExtContext
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sqlx.Tx) *Queries {
	return &Queries{db: tx}
}

const insertPlayerIfAbsent = `
INSERT INTO player (account_id, steam_id, personaname, name, avatar)
VALUES (:account_id, :steam_id, :personaname, :name, :avatar)
ON CONFLICT (account_id) DO NOTHING`

func (q *Queries) InsertPlayerIfAbsent(ctx context.Context, arg Player) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, insertPlayerIfAbsent, arg)
	return err
}

const getPlayer = `
SELECT account_id, steam_id, personaname, name, avatar
FROM player
WHERE account_id = ?`

func (q *Queries) GetPlayer(ctx context.Context, accountID int64) (Player, error) {
	var p Player
	err := sqlx.GetContext(ctx, q.db, &p, getPlayer, accountID)
	return p, err
}

const insertHeroIfAbsent = `
INSERT INTO hero (hero_id, name, localized_name, primary_attr, attack_type, roles, legs)
VALUES (:hero_id, :name, :localized_name, :primary_attr, :attack_type, :roles, :legs)
ON CONFLICT (hero_id) DO NOTHING`

func (q *Queries) InsertHeroIfAbsent(ctx context.Context, arg Hero) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, insertHeroIfAbsent, arg)
	return err
}

const getHero = `
SELECT hero_id, name, localized_name, primary_attr, attack_type, roles, legs
FROM hero
WHERE hero_id = ?`

func (q *Queries) GetHero(ctx context.Context, heroID int64) (Hero, error) {
	var h Hero
	err := sqlx.GetContext(ctx, q.db, &h, getHero, heroID)
	return h, err
}

const insertMatchScore = `
INSERT INTO match_score (match_score_id, player_id, week_score, month_score, year_score, overall_score, overall_count, score_date)
VALUES (:match_score_id, :player_id, :week_score, :month_score, :year_score, :overall_score, :overall_count, :score_date)
ON CONFLICT (player_id, score_date) DO NOTHING`

// InsertMatchScore reports whether a row was written. A score already
// stored for the same player and day is left untouched.
func (q *Queries) InsertMatchScore(ctx context.Context, arg MatchScore) (bool, error) {
	res, err := sqlx.NamedExecContext(ctx, q.db, insertMatchScore, arg)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const matchScoreWithPlayerColumns = `
SELECT ms.match_score_id, ms.player_id, ms.week_score, ms.month_score, ms.year_score,
       ms.overall_score, ms.overall_count, ms.score_date,
       p.account_id AS "player.account_id", p.steam_id AS "player.steam_id",
       p.personaname AS "player.personaname", p.name AS "player.name", p.avatar AS "player.avatar"
FROM match_score ms
JOIN player p ON p.account_id = ms.player_id`

const listMatchScoresForDay = matchScoreWithPlayerColumns + `
WHERE ms.score_date = ? AND ms.player_id IN (?)
ORDER BY ms.overall_score DESC`

func (q *Queries) ListMatchScoresForDay(ctx context.Context, scoreDate string, playerIDs []int64) ([]MatchScoreWithPlayer, error) {
	if len(playerIDs) == 0 {
		return []MatchScoreWithPlayer{}, nil
	}
	query, args, err := sqlx.In(listMatchScoresForDay, scoreDate, playerIDs)
	if err != nil {
		return nil, err
	}
	var rows []MatchScoreWithPlayer
	if err := sqlx.SelectContext(ctx, q.db, &rows, q.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

const getMatchScoreForDay = matchScoreWithPlayerColumns + `
WHERE ms.player_id = ? AND ms.score_date = ?`

func (q *Queries) GetMatchScoreForDay(ctx context.Context, playerID int64, scoreDate string) (MatchScoreWithPlayer, error) {
	var row MatchScoreWithPlayer
	err := sqlx.GetContext(ctx, q.db, &row, getMatchScoreForDay, playerID, scoreDate)
	return row, err
}

const getLatestMatchScore = matchScoreWithPlayerColumns + `
WHERE ms.player_id = ?
ORDER BY ms.score_date DESC
LIMIT 1`

func (q *Queries) GetLatestMatchScore(ctx context.Context, playerID int64) (MatchScoreWithPlayer, error) {
	var row MatchScoreWithPlayer
	err := sqlx.GetContext(ctx, q.db, &row, getLatestMatchScore, playerID)
	return row, err
}

const insertHeroScore = `
INSERT INTO hero_score (hero_score_id, player_id, hero_id, rank_score, last_played_score, win_score, overall_score, score_date)
VALUES (:hero_score_id, :player_id, :hero_id, :rank_score, :last_played_score, :win_score, :overall_score, :score_date)
ON CONFLICT (player_id, hero_id, score_date) DO NOTHING`

func (q *Queries) InsertHeroScore(ctx context.Context, arg HeroScore) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, insertHeroScore, arg)
	return err
}

const heroScoreDetailColumns = `
SELECT hs.hero_score_id, hs.player_id, hs.hero_id, hs.rank_score, hs.last_played_score,
       hs.win_score, hs.overall_score, hs.score_date,
       p.account_id AS "player.account_id", p.steam_id AS "player.steam_id",
       p.personaname AS "player.personaname", p.name AS "player.name", p.avatar AS "player.avatar",
       h.hero_id AS "hero.hero_id", h.name AS "hero.name", h.localized_name AS "hero.localized_name",
       h.primary_attr AS "hero.primary_attr", h.attack_type AS "hero.attack_type",
       h.roles AS "hero.roles", h.legs AS "hero.legs"
FROM hero_score hs
JOIN player p ON p.account_id = hs.player_id
JOIN hero h ON h.hero_id = hs.hero_id`

const listHeroScoresForDay = heroScoreDetailColumns + `
WHERE hs.player_id = ? AND hs.score_date = ?
ORDER BY hs.overall_score DESC, hs.hero_id`

func (q *Queries) ListHeroScoresForDay(ctx context.Context, playerID int64, scoreDate string) ([]HeroScoreDetail, error) {
	var rows []HeroScoreDetail
	if err := sqlx.SelectContext(ctx, q.db, &rows, listHeroScoresForDay, playerID, scoreDate); err != nil {
		return nil, err
	}
	return rows, nil
}

const getBestHeroScore = heroScoreDetailColumns + `
WHERE hs.player_id = ?
ORDER BY hs.overall_score DESC, hs.score_date DESC
LIMIT 1`

func (q *Queries) GetBestHeroScore(ctx context.Context, playerID int64) (HeroScoreDetail, error) {
	var row HeroScoreDetail
	err := sqlx.GetContext(ctx, q.db, &row, getBestHeroScore, playerID)
	return row, err
}
