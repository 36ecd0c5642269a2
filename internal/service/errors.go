package service

import crerr "github.com/cockroachdb/errors"

var (
	// ErrPlayerUnavailable means at least one provider call for the player
	// returned no data, so nothing was stored.
	ErrPlayerUnavailable = crerr.New("player stats unavailable")

	ErrNoScores      = crerr.New("no scores found")
	ErrInvalidCohort = crerr.New("invalid player cohort")
)
