package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/supakorn-kn/go-ehr/apis"
	"github.com/supakorn-kn/go-ehr/env"
	"github.com/supakorn-kn/go-ehr/memstore"
	"github.com/supakorn-kn/go-ehr/mongodb"
	"github.com/supakorn-kn/go-ehr/server"
	"github.com/supakorn-kn/go-ehr/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {

	rootCmd := &cobra.Command{
		Use:   "go-ehr",
		Short: "EHR records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {

	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func indexesCmd() *cobra.Command {

	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the indexes of every collection and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd.Context())
		},
	}
}

func newLogger(cfg *env.Env) zerolog.Logger {

	var logger zerolog.Logger
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}

// storageHandle is the shared storage together with the hook registration
// and shutdown of the engine behind it.
type storageHandle struct {
	db      storage.Database
	onReady func(ctx context.Context, hook mongodb.ReadyHook)
	connect func(ctx context.Context) error
	close   func(ctx context.Context) error
}

func openStorage(cfg *env.Env, logger zerolog.Logger) (*storageHandle, error) {

	switch cfg.Storage.Driver {
	case env.MemoryDriver:

		logger.Warn().Msg("using in-memory storage, data is lost on exit")

		return &storageHandle{
			db: memstore.New(),
			onReady: func(ctx context.Context, hook mongodb.ReadyHook) {
				if err := hook(ctx); err != nil {
					logger.Warn().Err(err).Msg("readiness hook failed")
				}
			},
			connect: func(context.Context) error { return nil },
			close:   func(context.Context) error { return nil },
		}, nil

	case env.MongoDBDriver:

		conn, err := mongodb.New(cfg.MongoDB, logger.With().Str("component", "mongodb").Logger())
		if err != nil {
			return nil, err
		}

		return &storageHandle{
			db:      conn,
			onReady: conn.OnReady,
			connect: conn.Connect,
			close:   conn.Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func runServer() error {

	cfg, err := env.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	handle, err := openStorage(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("open storage failed")
		return err
	}

	repos, err := server.NewRepositories(handle.db, cfg.PageSize)
	if err != nil {
		logger.Error().Err(err).Msg("create repositories failed")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle.onReady(ctx, repos.EnsureIndexes)

	// Requests arriving before the connection is up wait for it until their
	// own deadline.
	connectFailed := connectStorage(ctx, handle, logger, stop)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	g := apis.NewRouter(logger, cfg.Server.RequestTimeout)
	repos.Register(g.Group("api"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: g,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	if err := handle.close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("close storage failed")
	}

	select {
	case err := <-connectFailed:
		if err != nil {
			return err
		}
	default:
	}

	logger.Info().Msg("server stopped")
	return nil
}

// connectStorage connects in the background. The handle never recovers from
// a failed connect, so a failure stops the server and is delivered on the
// returned channel, which is closed once connect returns.
func connectStorage(ctx context.Context, handle *storageHandle, logger zerolog.Logger, stop context.CancelFunc) <-chan error {

	failed := make(chan error, 1)

	go func() {
		defer close(failed)

		// A connect cut short by shutdown is not a failure.
		if err := handle.connect(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("connect storage failed, stopping server")
			failed <- err
			stop()
		}
	}()

	return failed
}

func runIndexes(ctx context.Context) error {

	cfg, err := env.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	handle, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}

	defer handle.close(context.Background())

	if err := handle.connect(ctx); err != nil {
		return err
	}

	repos, err := server.NewRepositories(handle.db, cfg.PageSize)
	if err != nil {
		return err
	}

	if err := repos.EnsureIndexes(ctx); err != nil {
		return err
	}

	logger.Info().Msg("indexes are up to date")
	return nil
}
