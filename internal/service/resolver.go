package service

import (
	"context"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"strings"

	"github.com/rs/zerolog"
)

type PlayerSearcher interface {
	FindPlayer(ctx context.Context, name string) ([]domain.SearchCandidate, error)
}

// Resolver maps a username to a player id by exact, case-sensitive match
// against the search results.
type Resolver struct {
	searcher PlayerSearcher
	logger   zerolog.Logger
}

func NewResolver(searcher PlayerSearcher, logger zerolog.Logger) *Resolver {
	return &Resolver{searcher: searcher, logger: logger}
}

// Resolve never returns anything but a *domain.NotFoundError on failure;
// search outages are logged and reported as a miss.
func (r *Resolver) Resolve(ctx context.Context, username string) (domain.PlayerID, error) {
	if strings.TrimSpace(username) == "" {
		return "", &domain.NotFoundError{Username: username}
	}

	candidates, err := r.Search(ctx, username)
	if err != nil {
		r.logger.Warn().Err(err).Str("username", username).Msg("player search failed")
		return "", &domain.NotFoundError{Username: username, Err: err}
	}

	for _, c := range candidates {
		if c.Name == username && c.PlayerID != "" {
			r.logger.Debug().Str("username", username).Str("player_id", string(c.PlayerID)).Msg("player resolved")
			return c.PlayerID, nil
		}
	}

	r.logger.Info().Str("username", username).Int("candidates", len(candidates)).Msg("no exact match for username")
	return "", &domain.NotFoundError{Username: username}
}

// Search returns the raw candidate list.
func (r *Resolver) Search(ctx context.Context, name string) ([]domain.SearchCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	return r.searcher.FindPlayer(ctx, name)
}
