package constants

import "time"

const (
	ExternalAPITimeout = 30 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 2 * time.Minute
)

// win/loss date windows, in days. zero means lifetime.
const (
	WeekWindow     = 7
	MonthWindow    = 30
	YearWindow     = 365
	LifetimeWindow = 0
)

const (
	MinCohortSize = 1
	MaxCohortSize = 10
)

const (
	DefaultFetchWorkers  = 4
	DefaultRatePerMinute = 60
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
