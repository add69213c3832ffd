// Package main runs the ledger API: accounts, balance mutations and history.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/observer"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/redispkg"
	"github.com/go-petr/pet-ledger/pkg/telemetry"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.Setup(ctx, config.OTelEndpoint, config.ServiceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot setup tracing")
	}

	repos, db := setupRepos(ctx, logger, config)

	obs := setupObserver(ctx, logger, config)

	server, err := httpserver.New(repos, db, logger, config, obs)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("cannot shutdown server")
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("cannot flush traces")
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("cannot close database")
		}
	}
}

func setupRepos(ctx context.Context, logger zerolog.Logger, config configpkg.Config) (httpserver.Repos, *sql.DB) {
	if config.DBDriver == configpkg.DriverMemory {
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		return httpserver.MemRepos(memstore.New()), nil
	}

	db, err := dbpkg.Setup(ctx, config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	if config.MigrationURL != "" {
		if err := dbpkg.Migrate(db, config.MigrationURL); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}
	}

	return httpserver.PGSRepos(db, config.LockTimeout), db
}

func setupObserver(ctx context.Context, logger zerolog.Logger, config configpkg.Config) observer.Observer {
	obs := observer.Multi{observer.NewLog(logger)}

	if config.RedisAddress == "" {
		return obs
	}

	client, err := redispkg.Setup(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to redis")
	}

	return append(obs, observer.NewStream(client, config.RedisStream, config.RedisStreamMaxLen))
}
