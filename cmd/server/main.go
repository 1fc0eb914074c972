package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"rivals-scout/internal/config"
	"rivals-scout/internal/constants"
	fxmodules "rivals-scout/internal/fx"
	"rivals-scout/internal/middleware"
	"rivals-scout/internal/server"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

func main() {
	var o config.Overrides
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.StringVar(&o.EnvFile, "env-file", "", "load environment from this file instead of .env")
	flags.StringVarP(&o.ServerPort, "port", "p", "", "listen port (overrides SERVER_PORT)")
	flags.StringVar(&o.DBPath, "db", "", "sqlite database path (overrides DB_PATH)")
	flags.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&o.VisionProvider, "provider", "", "vision provider: openai or anthropic (overrides VISION_PROVIDER)")
	flags.Parse(os.Args[1:])

	fx.New(
		fx.Supply(o),
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	router *server.Router,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	handler := middleware.RequestID(log)(c.Handler(gzhttp.GzipHandler(router)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      http.TimeoutHandler(handler, constants.RequestTimeout, `{"error":"Request timed out"}`),
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout + constants.ShutdownTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
