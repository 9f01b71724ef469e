package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/confengine/internal/api"
	"github.com/phrazzld/confengine/internal/config"
	"github.com/phrazzld/confengine/internal/platform/auth"
	"github.com/phrazzld/confengine/internal/platform/logger"
	"github.com/phrazzld/confengine/internal/platform/postgres"
)

const shutdownTimeout = 10 * time.Second

// application holds the dependencies built from a resolved configuration.
type application struct {
	manager *config.Manager
	logger  *slog.Logger
	db      *pgxpool.Pool
	tokens  *auth.TokenService
}

// newApplication wires the application from a resolved manager. It returns
// a cleanup func that releases everything it opened.
func newApplication(ctx context.Context, m *config.Manager) (*application, func(), error) {
	logCfg, err := config.NewLoggingConfig(m)
	if err != nil {
		return nil, nil, err
	}
	log, closer, err := logger.Setup(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	app := &application{manager: m, logger: log}
	cleanup := func() {
		if app.db != nil {
			app.db.Close()
		}
		log.Info("application shutdown completed")
		_ = closer.Close()
	}

	log.Info("configuration resolved",
		"environment", m.Environment().String(),
		"warnings", len(m.Warnings()))
	log.Debug("effective configuration\n" + m.Summary())

	dbCfg, err := config.NewDatabaseConfig(m)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	app.db, err = postgres.Open(ctx, dbCfg, log)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrNotPostgres):
		log.Info("database is not postgres, connection pool disabled", "sqlite", dbCfg.IsSQLite())
	case m.Environment() == config.Production:
		cleanup()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	default:
		log.Warn("database unavailable, continuing without a connection pool", "error", err)
	}

	secCfg, err := config.NewSecurityConfig(m)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	app.tokens, err = auth.NewTokenService(secCfg)
	if err != nil {
		log.Warn("token service disabled, /config is served without authentication", "error", err)
		app.tokens = nil
	}

	return app, cleanup, nil
}

// router builds the HTTP handler.
func (app *application) router() (http.Handler, error) {
	cfg, err := app.manager.Snapshot()
	if err != nil {
		return nil, err
	}
	apiCfg, err := config.NewAPIConfig(app.manager)
	if err != nil {
		return nil, err
	}
	secCfg, err := config.NewSecurityConfig(app.manager)
	if err != nil {
		return nil, err
	}

	opts := api.RouterOptions{
		Config:   cfg,
		API:      apiCfg,
		Security: secCfg,
		Logger:   app.logger,
	}
	if app.tokens != nil {
		opts.Tokens = app.tokens
	}
	return api.NewRouter(opts), nil
}

// serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully.
func serve(ctx context.Context, m *config.Manager) error {
	app, cleanup, err := newApplication(ctx, m)
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := app.router()
	if err != nil {
		return err
	}
	apiCfg, err := config.NewAPIConfig(m)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              apiCfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", server.Addr, "api_version", apiCfg.Version())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
