package fx

import (
	"dota-leaderboard/internal/server"
	"dota-leaderboard/internal/service"
	"net/http"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestModuleGraph(t *testing.T) {
	err := fx.ValidateApp(
		Module,
		fx.Invoke(func(http.Handler, *server.Handler, *sqlx.DB) {}),
		fx.Invoke(func(*service.LeaderboardService, *service.RecommendService) {}),
	)
	assert.NoError(t, err)
}

func TestCoreGraph(t *testing.T) {
	err := fx.ValidateApp(
		Core,
		fx.Invoke(func(service.StatsProvider, *service.FetchService) {}),
	)
	assert.NoError(t, err)
}
