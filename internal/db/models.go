package db

type Player struct {
	AccountID   int64  `db:"account_id"`
	SteamID     string `db:"steam_id"`
	Personaname string `db:"personaname"`
	Name        string `db:"name"`
	Avatar      string `db:"avatar"`
}

type Hero struct {
	HeroID        int64  `db:"hero_id"`
	Name          string `db:"name"`
	LocalizedName string `db:"localized_name"`
	PrimaryAttr   string `db:"primary_attr"`
	AttackType    string `db:"attack_type"`
	Roles         string `db:"roles"`
	Legs          int64  `db:"legs"`
}

type MatchScore struct {
	MatchScoreID string  `db:"match_score_id"`
	PlayerID     int64   `db:"player_id"`
	WeekScore    float64 `db:"week_score"`
	MonthScore   float64 `db:"month_score"`
	YearScore    float64 `db:"year_score"`
	OverallScore float64 `db:"overall_score"`
	OverallCount int64   `db:"overall_count"`
	ScoreDate    string  `db:"score_date"`
}

type MatchScoreWithPlayer struct {
	MatchScore
	Player Player `db:"player"`
}

type HeroScore struct {
	HeroScoreID     string  `db:"hero_score_id"`
	PlayerID        int64   `db:"player_id"`
	HeroID          int64   `db:"hero_id"`
	RankScore       float64 `db:"rank_score"`
	LastPlayedScore float64 `db:"last_played_score"`
	WinScore        float64 `db:"win_score"`
	OverallScore    float64 `db:"overall_score"`
	ScoreDate       string  `db:"score_date"`
}

type HeroScoreDetail struct {
	HeroScore
	Player Player `db:"player"`
	Hero   Hero   `db:"hero"`
}
