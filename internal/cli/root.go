// Package cli is the terminal front-end: it scouts a screenshot, a username or
// a player id and prints the resulting cards.
package cli

import (
	"fmt"
	"io"
	"os"
	"rivals-scout/internal/api"
	"rivals-scout/internal/catalog"
	"rivals-scout/internal/config"
	"rivals-scout/internal/logger"
	"rivals-scout/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	apiKey   string
	provider string
	envFile  string
	logLevel string
	json     bool
}

// deps is the service graph the commands run against, built once flags are
// parsed.
type deps struct {
	cfg       *config.Config
	resolver  *service.Resolver
	batch     *service.BatchResolver
	stats     *service.StatsFetcher
	extractor *service.Extractor
	catalog   *catalog.Catalog
	logger    zerolog.Logger
}

func buildDeps(o *options) (*deps, error) {
	log := logger.NewConsole(o.logLevel)

	cfg, err := config.Load(log, config.Overrides{
		EnvFile:        o.envFile,
		LogLevel:       o.logLevel,
		VisionProvider: o.provider,
	})
	if err != nil {
		return nil, err
	}
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	cat, err := catalog.New(cfg, log)
	if err != nil {
		return nil, err
	}

	rivals := api.NewRivalsClient(cfg)
	var vision service.VisionClient = api.NewOpenAIClient(cfg)
	if cfg.VisionProvider == config.ProviderAnthropic {
		vision = api.NewAnthropicClient(cfg)
	}

	resolver := service.NewResolver(rivals, log)
	return &deps{
		cfg:       cfg,
		resolver:  resolver,
		batch:     service.NewBatchResolver(resolver, log),
		stats:     service.NewStatsFetcher(rivals, cfg, log),
		extractor: service.NewExtractor(vision, log),
		catalog:   cat,
		logger:    log,
	}, nil
}

// NewRootCmd builds the scout command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "scout",
		Short:         "Marvel Rivals lobby scouting",
		Long:          "Read usernames from a lobby screenshot, look the players up on rivalsmeta and print a scouting card for each.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&o.apiKey, "api-key", "", "vision model API key (defaults to VISION_API_KEY)")
	f.StringVar(&o.provider, "provider", "", "vision provider: openai or anthropic")
	f.StringVar(&o.envFile, "env-file", "", "load environment from this file instead of .env")
	f.StringVar(&o.logLevel, "log-level", "warn", "debug, info, warn or error")
	f.BoolVar(&o.json, "json", false, "print cards as JSON")

	root.AddCommand(newImageCmd(o))
	root.AddCommand(newPlayerCmd(o))
	root.AddCommand(newStatsCmd(o))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
