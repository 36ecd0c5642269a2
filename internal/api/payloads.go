package api

import (
	"bytes"
	"strconv"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// HeroID accepts both 12 and "12" on the wire. The rankings and catalog
// endpoints send numbers while the per-player heroes endpoint sends strings,
// so every hero id is normalized here before any join.
type HeroID int64

func (h *HeroID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return crerr.New("hero_id is null")
	}
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return crerr.Wrapf(err, "hero_id %q", b)
	}
	*h = HeroID(n)
	return nil
}

type PlayerResponse struct {
	Profile *Profile `json:"profile"`
}

type Profile struct {
	AccountID   int64  `json:"account_id" validate:"gt=0"`
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	Name        string `json:"name"`
	Avatar      string `json:"avatarfull"`
}

type WinLoss struct {
	Win  int `json:"win" validate:"gte=0"`
	Lose int `json:"lose" validate:"gte=0"`
}

type HeroRanking struct {
	HeroID      HeroID  `json:"hero_id" validate:"gt=0"`
	Score       float64 `json:"score"`
	PercentRank float64 `json:"percent_rank" validate:"gte=0,lte=1"`
	Card        int     `json:"card"`
}

type PlayerHero struct {
	HeroID     HeroID `json:"hero_id" validate:"gt=0"`
	LastPlayed int64  `json:"last_played" validate:"gte=0"`
	Games      int    `json:"games" validate:"gte=0"`
	Win        int    `json:"win" validate:"gte=0"`
}

type HeroInfo struct {
	ID            HeroID   `json:"id" validate:"gt=0"`
	Name          string   `json:"name" validate:"required"`
	LocalizedName string   `json:"localized_name"`
	PrimaryAttr   string   `json:"primary_attr"`
	AttackType    string   `json:"attack_type"`
	Roles         []string `json:"roles"`
	Legs          int      `json:"legs" validate:"gte=0"`
}

func (c *OpenDotaClient) decode(path string, body []byte, out any) error {
	if err := sonic.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("malformed stats payload")
		return crerr.Wrapf(ErrMalformedPayload, "%s: %v", path, err)
	}
	return nil
}

func (c *OpenDotaClient) check(path string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("stats payload failed validation")
		return crerr.Wrapf(ErrMalformedPayload, "%s: %v", path, err)
	}
	return nil
}
