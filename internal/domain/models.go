package domain

import (
	"time"
)

const DateLayout = "2006-01-02"

type Player struct {
	AccountID   int64
	SteamID     string
	PersonaName string
	Name        string
	Avatar      string
}

type Hero struct {
	HeroID        int64
	Name          string
	LocalizedName string
	PrimaryAttr   string
	AttackType    string
	Roles         []string
	Legs          int
}

type MatchScore struct {
	ID           string // nanoid
	PlayerID     int64
	WeekScore    float64 // 0.0 - 1.0
	MonthScore   float64
	YearScore    float64
	OverallScore float64
	OverallCount int
	ScoreDate    time.Time
	Player       Player
}

type HeroScore struct {
	ID              string // nanoid
	PlayerID        int64
	HeroID          int64
	RankScore       float64
	LastPlayedScore float64
	WinScore        float64
	OverallScore    float64 // weighted blend of the three above
	ScoreDate       time.Time
	Player          Player
	Hero            Hero
}

// Day returns the UTC calendar date of t as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p Player) ToView() map[string]any {
	return map[string]any{
		"account_id":  p.AccountID,
		"steam_id":    p.SteamID,
		"person_name": p.PersonaName,
		"name":        p.Name,
		"avatar_url":  p.Avatar,
	}
}

func (h Hero) ToView() map[string]any {
	return map[string]any{
		"hero_id":        h.HeroID,
		"name":           h.Name,
		"localized_name": h.LocalizedName,
		"primary_attr":   h.PrimaryAttr,
		"attack_type":    h.AttackType,
		"roles":          h.Roles,
		"legs":           h.Legs,
	}
}

func (s MatchScore) ToView() map[string]any {
	return map[string]any{
		"match_score_id": s.ID,
		"week_score":     s.WeekScore,
		"month_score":    s.MonthScore,
		"year_score":     s.YearScore,
		"overall_score":  s.OverallScore,
		"overall_count":  s.OverallCount,
		"score_date":     s.ScoreDate.Format(DateLayout),
		"player":         s.Player.ToView(),
	}
}

func (s HeroScore) ToView() map[string]any {
	return map[string]any{
		"hero_score_id":     s.ID,
		"rank_score":        s.RankScore,
		"last_played_score": s.LastPlayedScore,
		"win_score":         s.WinScore,
		"overall_score":     s.OverallScore,
		"score_date":        s.ScoreDate.Format(DateLayout),
		"player":            s.Player.ToView(),
		"hero":              s.Hero.ToView(),
	}
}
