package server

import (
	"dota-leaderboard/internal/api"
	"dota-leaderboard/internal/middleware"
	"dota-leaderboard/internal/repository"
	"dota-leaderboard/internal/service"
	"net/http"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	leaderboard *service.LeaderboardService
	recommend   *service.RecommendService
	players     *repository.PlayerRepository
	heroes      *repository.HeroRepository
	provider    *api.OpenDotaClient
	logger      zerolog.Logger
}

func NewHandler(
	leaderboard *service.LeaderboardService,
	recommend *service.RecommendService,
	players *repository.PlayerRepository,
	heroes *repository.HeroRepository,
	provider *api.OpenDotaClient,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		leaderboard: leaderboard,
		recommend:   recommend,
		players:     players,
		heroes:      heroes,
		provider:    provider,
		logger:      logger,
	}
}

// Leaderboard serves GET /leaderboard?ids=1,2,3&sort=W as a list of score
// views in rank order.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	scores, err := h.leaderboard.Leaderboard(r.Context(), ids, r.URL.Query().Get("sort"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]map[string]any, len(scores))
	for i, s := range scores {
		views[i] = s.ToView()
	}
	writeJSON(w, http.StatusOK, views)
}

// Compare serves GET /compare?p1=1&p2=2
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	p1, err := parseID(r.URL.Query().Get("p1"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p2, err := parseID(r.URL.Query().Get("p2"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cmp, err := h.leaderboard.Compare(r.Context(), p1, p2)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp.ToView())
}

// Recommend serves GET /recommend?id=1
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := h.recommend.Recommend(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.ToView())
}

// Player serves GET /players/{id} from the stored profiles.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	player, err := h.players.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if player == nil {
		h.fail(w, r, crerr.Wrapf(errNotFound, "player %d", id))
		return
	}
	writeJSON(w, http.StatusOK, player.ToView())
}

// Hero serves GET /heroes/{id} from the stored hero catalog.
func (h *Handler) Hero(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	hero, err := h.heroes.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if hero == nil {
		h.fail(w, r, crerr.Wrapf(errNotFound, "hero %d", id))
		return
	}
	writeJSON(w, http.StatusOK, hero.ToView())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.provider != nil {
		info := h.provider.RateLimitInfo()
		body["opendota"] = map[string]any{
			"remaining_minute": info.RemainingMinute,
			"remaining_day":    info.RemainingDay,
			"updated_at":       info.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := zerolog.Ctx(r.Context())
	if log.GetLevel() == zerolog.Disabled {
		log = &h.logger
	}
	requestID := middleware.GetRequestID(r.Context())

	switch {
	case crerr.Is(err, errBadParam), crerr.Is(err, service.ErrInvalidCohort):
		log.Debug().Err(err).Msg("rejected request")
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error(), requestID)
	case crerr.Is(err, service.ErrNoScores):
		writeError(w, http.StatusNotFound, "not_found", "no scores available for the requested players", requestID)
	case crerr.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error", requestID)
	}
}

var (
	errBadParam = crerr.New("bad query parameter")
	errNotFound = crerr.New("not found")
)

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, crerr.Wrap(errBadParam, "missing player id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, crerr.Wrapf(errBadParam, "player id %q", raw)
	}
	return id, nil
}

func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, crerr.Wrap(errBadParam, "missing ids")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
