package server

import (
	"context"
	"net/http"
	"rivals-scout/internal/aggregate"
	"rivals-scout/internal/domain"
	"rivals-scout/internal/session"

	"github.com/rs/zerolog"
)

type Scouter interface {
	ProcessImage(ctx context.Context, apiKey, image string) (*session.Session, error)
	Correct(ctx context.Context, sessionID, username, newUsername string) (*session.Session, error)
	Session(sessionID string) (*session.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]domain.ScoutSession, error)
	Card(ctx context.Context, id domain.PlayerID, sessionID string) (*aggregate.Card, error)
}

type PlayerFinder interface {
	Resolve(ctx context.Context, username string) (domain.PlayerID, error)
	Search(ctx context.Context, name string) ([]domain.SearchCandidate, error)
}

type StatsProvider interface {
	Fetch(ctx context.Context, id domain.PlayerID) (*domain.PlayerStats, error)
}

type HeroLister interface {
	Heroes() []domain.Hero
}

// Router serves the JSON API.
type Router struct {
	mux     *http.ServeMux
	scout   Scouter
	players PlayerFinder
	stats   StatsProvider
	heroes  HeroLister
	logger  zerolog.Logger
}

func NewRouter(scout Scouter, players PlayerFinder, stats StatsProvider, heroes HeroLister, logger zerolog.Logger) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		scout:   scout,
		players: players,
		stats:   stats,
		heroes:  heroes,
		logger:  logger,
	}

	r.mux.HandleFunc("POST /api/search", r.handleSearch)
	r.mux.HandleFunc("POST /api/find-player", r.handleFindPlayer)
	r.mux.HandleFunc("GET /api/player/{id}", r.handleGetPlayer)
	r.mux.HandleFunc("GET /api/player/{id}/card", r.handleGetCard)
	r.mux.HandleFunc("POST /api/process-image", r.handleProcessImage)

	r.mux.HandleFunc("GET /api/sessions", r.handleListSessions)
	r.mux.HandleFunc("GET /api/sessions/{id}", r.handleGetSession)
	r.mux.HandleFunc("POST /api/sessions/{id}/players", r.handleCorrectPlayer)

	r.mux.HandleFunc("GET /api/heroes", r.handleGetHeroes)
	r.mux.HandleFunc("GET /healthz", r.handleHealth)

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
