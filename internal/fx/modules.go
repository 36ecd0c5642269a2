package fx

import (
	"dota-leaderboard/internal/api"
	"dota-leaderboard/internal/config"
	"dota-leaderboard/internal/database"
	"dota-leaderboard/internal/db"
	"dota-leaderboard/internal/logger"
	"dota-leaderboard/internal/metrics"
	"dota-leaderboard/internal/repository"
	"dota-leaderboard/internal/server"
	"dota-leaderboard/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sqlx.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideStatsProvider(client *api.OpenDotaClient) service.StatsProvider {
	return client
}

func applyLogLevel(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
}

// Core is everything except the HTTP surface, shared by the server and the CLI.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Invoke(applyLogLevel),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewHeroRepository),
	fx.Provide(repository.NewMatchScoreRepository),
	fx.Provide(repository.NewHeroScoreRepository),
	// api client
	fx.Provide(api.NewOpenDotaClient),
	fx.Provide(ProvideStatsProvider),
	// svc
	fx.Provide(service.NewFetchService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewRecommendService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewHandler),
	fx.Provide(server.NewRouter),
)
