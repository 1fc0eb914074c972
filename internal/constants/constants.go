package constants

import "time"

const (
	StatsCacheTTL    = 2 * time.Minute
	StatsCacheSize   = 512
	SessionTTL       = 1 * time.Hour
	SessionCacheSize = 256
)

const (
	ExternalAPITimeout = 10 * time.Second
	VisionAPITimeout   = 60 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 90 * time.Second
)

const (
	DBMaxOpenConns    = 16
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
	MaxRequestBytes = 16 << 20
)

const (
	DefaultSeason       = 2
	LobbySize           = 6
	ResolveConcurrency  = 12
	RecentSessionsLimit = 20
	MaxSessionsLimit    = 100
)

const (
	TopPlayedLimit     = 3
	BestHeroesLimit    = 3
	BestHeroMinMatches = 1 // heroes need strictly more matches than this
	WorstMatchupsLimit = 6
	BestMatchupsLimit  = 3
)

const (
	VisionTemperature = 0.1
	VisionMaxTokens   = 512
)
