package fx

import (
	"rivals-scout/internal/aggregate"
	"rivals-scout/internal/api"
	"rivals-scout/internal/catalog"
	"rivals-scout/internal/config"
	"rivals-scout/internal/database"
	"rivals-scout/internal/logger"
	"rivals-scout/internal/repository"
	"rivals-scout/internal/server"
	"rivals-scout/internal/service"
	"rivals-scout/internal/session"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideSearcher(c *api.RivalsClient) service.PlayerSearcher { return c }

func ProvideStatsSource(c *api.RivalsClient) service.StatsSource { return c }

// ProvideVision picks the vision backend named by VISION_PROVIDER.
func ProvideVision(cfg *config.Config, logger zerolog.Logger) service.VisionClient {
	var v service.VisionClient
	switch cfg.VisionProvider {
	case config.ProviderAnthropic:
		v = api.NewAnthropicClient(cfg)
	default:
		v = api.NewOpenAIClient(cfg)
	}
	logger.Info().Str("provider", v.Provider()).Str("model", v.Model()).Msg("vision provider selected")
	return v
}

func ProvideLedger(r *repository.SessionRepository) service.SessionLedger { return r }

func ProvideUsernameResolver(r *service.Resolver) service.UsernameResolver { return r }

func ProvideHeroCatalog(c *catalog.Catalog) aggregate.HeroCatalog { return c }

func ProvideRouter(
	scout *service.ScoutService,
	resolver *service.Resolver,
	stats *service.StatsFetcher,
	cat *catalog.Catalog,
	logger zerolog.Logger,
) *server.Router {
	return server.NewRouter(scout, resolver, stats, cat, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(catalog.New),
	fx.Provide(session.NewStore),
	// repos
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(ProvideLedger),
	// api clients
	fx.Provide(api.NewRivalsClient),
	fx.Provide(ProvideSearcher),
	fx.Provide(ProvideStatsSource),
	fx.Provide(ProvideVision),
	// svc
	fx.Provide(service.NewResolver),
	fx.Provide(ProvideUsernameResolver),
	fx.Provide(service.NewBatchResolver),
	fx.Provide(service.NewStatsFetcher),
	fx.Provide(service.NewExtractor),
	fx.Provide(ProvideHeroCatalog),
	fx.Provide(service.NewScoutService),
	// server
	fx.Provide(ProvideRouter),
)
