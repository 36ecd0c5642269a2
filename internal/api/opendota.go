package api

import (
	"context"
	"dota-leaderboard/internal/config"
	"dota-leaderboard/internal/constants"
	"dota-leaderboard/internal/metrics"
	"strconv"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var (
	// ErrNoData is the only failure Fetch reports. Network errors, timeouts
	// and non-200 answers all collapse into it.
	ErrNoData = crerr.New("opendota: no data")

	ErrMalformedPayload = crerr.New("opendota: malformed payload")
)

type OpenDotaClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	limiter     *rate.Limiter
	validate    *validator.Validate
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	RemainingMinute int       `json:"remaining_minute"`
	RemainingDay    int       `json:"remaining_day"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewOpenDotaClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *OpenDotaClient {
	return &OpenDotaClient{
		baseURL: strings.TrimRight(cfg.OpenDotaBaseURL, "/"),
		apiKey:  cfg.OpenDotaAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute),
		validate: validator.New(),
		metrics:  m,
		logger:   logger.With().Str("component", "opendota").Logger(),
		rateLimit: RateLimitInfo{
			RemainingMinute: cfg.RatePerMinute,
			UpdatedAt:       time.Now(),
		},
	}
}

func (c *OpenDotaClient) RateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *OpenDotaClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Minute")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingMinute = n
		}
	}
	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Day")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingDay = n
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// Fetch issues a single GET for path with optional query parameters and
// returns the raw body, or ErrNoData.
func (c *OpenDotaClient) Fetch(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	return c.fetch(ctx, "raw", path, params)
}

func (c *OpenDotaClient) fetch(ctx context.Context, endpoint, path string, params map[string]string) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, path, params)
	c.metrics.Upstream(endpoint, err == nil, time.Since(start))
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("stats request failed")
		return nil, ErrNoData
	}
	return body, nil
}

func (c *OpenDotaClient) do(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, crerr.Wrap(err, "rate limiter")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	for k, v := range params {
		args.Add(k, v)
	}
	if c.apiKey != "" {
		args.Add("api_key", c.apiKey)
	}

	c.logger.Debug().Str("path", path).Interface("params", params).Msg("stats request")

	deadline := time.Now().Add(constants.ExternalAPITimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	c.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, crerr.Newf("API error: %d", resp.StatusCode())
	}

	return append([]byte(nil), resp.Body()...), nil
}

func (c *OpenDotaClient) GetPlayer(ctx context.Context, accountID int64) (*PlayerResponse, error) {
	path := "players/" + strconv.FormatInt(accountID, 10)
	out, err := getJSON[PlayerResponse](ctx, c, "players", path, nil)
	if err != nil {
		return nil, err
	}
	if out.Profile == nil || out.Profile.AccountID == 0 {
		c.logger.Warn().Int64("player_id", accountID).Msg("profile missing from player payload")
		return nil, ErrNoData
	}
	if err := c.check(path, out.Profile); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWinLoss returns win/loss counts over the last days days, or over the
// whole history when days is zero.
func (c *OpenDotaClient) GetWinLoss(ctx context.Context, accountID int64, days int) (*WinLoss, error) {
	path := "players/" + strconv.FormatInt(accountID, 10) + "/wl"
	var params map[string]string
	if days > 0 {
		params = map[string]string{"date": strconv.Itoa(days)}
	}
	out, err := getJSON[WinLoss](ctx, c, "players_wl", path, params)
	if err != nil {
		return nil, err
	}
	if err := c.check(path, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OpenDotaClient) GetHeroRankings(ctx context.Context, accountID int64) ([]HeroRanking, error) {
	return getList[HeroRanking](ctx, c, "players_rankings", "players/"+strconv.FormatInt(accountID, 10)+"/rankings")
}

func (c *OpenDotaClient) GetPlayerHeroes(ctx context.Context, accountID int64) ([]PlayerHero, error) {
	return getList[PlayerHero](ctx, c, "players_heroes", "players/"+strconv.FormatInt(accountID, 10)+"/heroes")
}

func (c *OpenDotaClient) GetHeroes(ctx context.Context) ([]HeroInfo, error) {
	return getList[HeroInfo](ctx, c, "heroes", "heroes")
}

func getJSON[T any](ctx context.Context, c *OpenDotaClient, endpoint, path string, params map[string]string) (*T, error) {
	body, err := c.fetch(ctx, endpoint, path, params)
	if err != nil {
		return nil, err
	}
	var out T
	if err := c.decode(path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getList decodes a JSON array and validates every element.
func getList[T any](ctx context.Context, c *OpenDotaClient, endpoint, path string) ([]T, error) {
	out, err := getJSON[[]T](ctx, c, endpoint, path, nil)
	if err != nil {
		return nil, err
	}
	items := *out
	for i := range items {
		if err := c.check(path, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}
