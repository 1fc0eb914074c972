package service

import (
	"context"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type UsernameResolver interface {
	Resolve(ctx context.Context, username string) (domain.PlayerID, error)
}

type BatchResolver struct {
	resolver UsernameResolver
	limit    int
	logger   zerolog.Logger
}

func NewBatchResolver(resolver UsernameResolver, logger zerolog.Logger) *BatchResolver {
	return &BatchResolver{resolver: resolver, limit: constants.ResolveConcurrency, logger: logger}
}

// WithLimit caps concurrent lookups; n <= 0 removes the cap.
func (b *BatchResolver) WithLimit(n int) *BatchResolver {
	next := *b
	next.limit = n
	return &next
}

// ResolveAll resolves every username concurrently and merges the results in
// input order once all lookups are done. A failed lookup becomes an
// unresolved entry; a repeated username takes the later lookup's result.
func (b *BatchResolver) ResolveAll(ctx context.Context, usernames []string) (domain.UsernameMapping, error) {
	ids := make([]domain.PlayerID, len(usernames))

	g := new(errgroup.Group)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, username := range usernames {
		g.Go(func() error {
			id, err := b.resolver.Resolve(ctx, username)
			if err != nil {
				b.logger.Debug().Err(err).Str("username", username).Msg("username left unresolved")
				return nil
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.UsernameMapping{}, err
	}

	mapping := domain.NewUsernameMapping()
	for i, username := range usernames {
		mapping.Set(username, ids[i])
	}

	b.logger.Info().
		Int("usernames", mapping.Len()).
		Int("resolved", mapping.Resolved()).
		Msg("batch resolution completed")
	return mapping, nil
}
