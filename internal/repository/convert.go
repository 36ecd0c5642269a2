package repository

import (
	"dota-leaderboard/internal/db"
	"dota-leaderboard/internal/domain"
	"strings"
	"time"
)

const rolesSeparator = ","

func formatDay(t time.Time) string {
	return domain.Day(t).Format(domain.DateLayout)
}

func parseDay(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func playerParams(p domain.Player) db.Player {
	return db.Player{
		AccountID:   p.AccountID,
		SteamID:     p.SteamID,
		Personaname: p.PersonaName,
		Name:        p.Name,
		Avatar:      p.Avatar,
	}
}

func toPlayer(p db.Player) domain.Player {
	return domain.Player{
		AccountID:   p.AccountID,
		SteamID:     p.SteamID,
		PersonaName: p.Personaname,
		Name:        p.Name,
		Avatar:      p.Avatar,
	}
}

func heroParams(h domain.Hero) db.Hero {
	return db.Hero{
		HeroID:        h.HeroID,
		Name:          h.Name,
		LocalizedName: h.LocalizedName,
		PrimaryAttr:   h.PrimaryAttr,
		AttackType:    h.AttackType,
		Roles:         strings.Join(h.Roles, rolesSeparator),
		Legs:          int64(h.Legs),
	}
}

func toHero(h db.Hero) domain.Hero {
	var roles []string
	if h.Roles != "" {
		roles = strings.Split(h.Roles, rolesSeparator)
	}
	return domain.Hero{
		HeroID:        h.HeroID,
		Name:          h.Name,
		LocalizedName: h.LocalizedName,
		PrimaryAttr:   h.PrimaryAttr,
		AttackType:    h.AttackType,
		Roles:         roles,
		Legs:          int(h.Legs),
	}
}

func toMatchScore(row db.MatchScoreWithPlayer) domain.MatchScore {
	return domain.MatchScore{
		ID:           row.MatchScoreID,
		PlayerID:     row.PlayerID,
		WeekScore:    row.WeekScore,
		MonthScore:   row.MonthScore,
		YearScore:    row.YearScore,
		OverallScore: row.OverallScore,
		OverallCount: int(row.OverallCount),
		ScoreDate:    parseDay(row.ScoreDate),
		Player:       toPlayer(row.Player),
	}
}

func toHeroScore(row db.HeroScoreDetail) domain.HeroScore {
	return domain.HeroScore{
		ID:              row.HeroScoreID,
		PlayerID:        row.PlayerID,
		HeroID:          row.HeroID,
		RankScore:       row.RankScore,
		LastPlayedScore: row.LastPlayedScore,
		WinScore:        row.WinScore,
		OverallScore:    row.OverallScore,
		ScoreDate:       parseDay(row.ScoreDate),
		Player:          toPlayer(row.Player),
		Hero:            toHero(row.Hero),
	}
}
