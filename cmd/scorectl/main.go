package main

import (
	"context"
	"dota-leaderboard/internal/constants"
	"dota-leaderboard/internal/database"
	fxmodules "dota-leaderboard/internal/fx"
	"dota-leaderboard/internal/logger"
	"dota-leaderboard/internal/service"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type deps struct {
	DB          *sqlx.DB
	Leaderboard *service.LeaderboardService
	Recommend   *service.RecommendService
	Logger      zerolog.Logger
}

// buildDeps logs to logOut at warn level so stdout carries only command output.
func buildDeps(logOut io.Writer) (*deps, error) {
	var d deps
	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Decorate(func(zerolog.Logger) zerolog.Logger {
			return logger.NewWithWriter(logOut, zerolog.WarnLevel)
		}),
		fx.Populate(&d.DB, &d.Leaderboard, &d.Recommend, &d.Logger),
	)
	if err := app.Err(); err != nil {
		return nil, crerr.Wrap(err, "build dependency graph")
	}
	return &d, nil
}

func withDeps(run func(ctx context.Context, d *deps) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		d, err := buildDeps(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer d.DB.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), constants.RequestTimeout)
		defer cancel()

		out, err := run(ctx, d)
		if err != nil {
			return err
		}
		enc := sonic.ConfigDefault.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, crerr.Wrapf(err, "player id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func leaderboardCmd() *cobra.Command {
	var ids, sortKey string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank a cohort of players by today's match scores",
		RunE: withDeps(func(ctx context.Context, d *deps) (any, error) {
			playerIDs, err := parseIDList(ids)
			if err != nil {
				return nil, err
			}
			scores, err := d.Leaderboard.Leaderboard(ctx, playerIDs, sortKey)
			if err != nil {
				return nil, err
			}
			views := make([]map[string]any, len(scores))
			for i, s := range scores {
				views[i] = s.ToView()
			}
			return views, nil
		}),
	}
	cmd.Flags().StringVar(&ids, "ids", "", "comma separated account ids (1 to 10)")
	cmd.Flags().StringVar(&sortKey, "sort", "O", "sort key: W, M, Y, C or O")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func compareCmd() *cobra.Command {
	var p1, p2 int64
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two players",
		RunE: withDeps(func(ctx context.Context, d *deps) (any, error) {
			cmp, err := d.Leaderboard.Compare(ctx, p1, p2)
			if err != nil {
				return nil, err
			}
			return cmp.ToView(), nil
		}),
	}
	cmd.Flags().Int64Var(&p1, "p1", 0, "first account id")
	cmd.Flags().Int64Var(&p2, "p2", 0, "second account id")
	_ = cmd.MarkFlagRequired("p1")
	_ = cmd.MarkFlagRequired("p2")
	return cmd
}

func recommendCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend the best hero for a player",
		RunE: withDeps(func(ctx context.Context, d *deps) (any, error) {
			rec, err := d.Recommend.Recommend(ctx, id)
			if err != nil {
				return nil, err
			}
			return rec.ToView(), nil
		}),
	}
	cmd.Flags().Int64Var(&id, "id", 0, "account id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: withDeps(func(_ context.Context, d *deps) (any, error) {
			if err := database.Migrate(d.DB, d.Logger); err != nil {
				return nil, err
			}
			return map[string]string{"status": "migrated"}, nil
		}),
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scorectl",
		Short:         "Query Dota 2 player scores from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(leaderboardCmd(), compareCmd(), recommendCmd(), migrateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := zerolog.New(os.Stderr)
		log.Error().Err(err).Msg("scorectl failed")
		os.Exit(1)
	}
}
