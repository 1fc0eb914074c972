package service

import (
	"context"
	"errors"
	"fmt"
	"rivals-scout/internal/api"
	"rivals-scout/internal/config"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

type StatsSource interface {
	GetPlayer(ctx context.Context, id domain.PlayerID, season int) ([]byte, error)
}

// StatsFetcher loads and validates season stats documents. Valid documents
// are kept for cfg.StatsCacheTTL; failures are never cached.
type StatsFetcher struct {
	src    StatsSource
	season int
	cache  *expirable.LRU[domain.PlayerID, *domain.PlayerStats]
	logger zerolog.Logger
}

func NewStatsFetcher(src StatsSource, cfg *config.Config, logger zerolog.Logger) *StatsFetcher {
	f := &StatsFetcher{src: src, season: cfg.Season, logger: logger}
	if cfg.StatsCacheTTL > 0 {
		f.cache = expirable.NewLRU[domain.PlayerID, *domain.PlayerStats](constants.StatsCacheSize, nil, cfg.StatsCacheTTL)
	}
	return f
}

func (f *StatsFetcher) Fetch(ctx context.Context, id domain.PlayerID) (*domain.PlayerStats, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: no player id", domain.ErrNotFound)
	}
	if f.cache != nil {
		if ps, ok := f.cache.Get(id); ok {
			f.logger.Debug().Str("player_id", string(id)).Msg("returning cached player stats")
			return ps, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	body, err := f.src.GetPlayer(ctx, id, f.season)
	if err != nil {
		f.logger.Error().Err(err).Str("player_id", string(id)).Msg("failed to fetch player stats")
		var se *api.StatusError
		if errors.As(err, &se) {
			return nil, &domain.FetchError{PlayerID: id, StatusCode: se.StatusCode, Err: err}
		}
		return nil, &domain.FetchError{PlayerID: id, Err: err}
	}

	ps, err := domain.ParsePlayerStats(body)
	if err != nil {
		f.logger.Warn().Err(err).Str("player_id", string(id)).Int("bytes", len(body)).Msg("player stats failed validation")
		return nil, err
	}

	if f.cache != nil {
		f.cache.Add(id, ps)
	}
	f.logger.Info().
		Str("player_id", string(id)).
		Int("heroes", len(ps.HeroesRanked)).
		Int("matchups", len(ps.Matchups)).
		Msg("player stats fetched")
	return ps, nil
}
