package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/tablecup/internal/config"
	"github.com/AdamBeresnev/tablecup/internal/db"
	"github.com/AdamBeresnev/tablecup/internal/lock"
	"github.com/AdamBeresnev/tablecup/internal/realtime"
	"github.com/AdamBeresnev/tablecup/internal/service"
	"github.com/AdamBeresnev/tablecup/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.DBDriver); err != nil {
		return err
	}

	locker, err := newLocker(cfg)
	if err != nil {
		return err
	}

	broker := realtime.NewBroker()
	defer broker.Shutdown()

	app := newApplication(cfg, database, locker, broker, clock.New())
	app.sessions.Store = sessionStore(cfg, database)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newApplication(cfg *config.Config, database *sqlx.DB, locker lock.Locker, broker *realtime.Broker, clk clock.Clock) *application {
	deps := service.Deps{
		DB:       database,
		Events:   store.NewEventStore(database),
		Matches:  store.NewMatchStore(database),
		Log:      store.NewLogStore(database),
		Locker:   locker,
		Notifier: broker,
		Clock:    clk,
	}

	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode

	return &application{
		cfg:         cfg,
		sessions:    sessions,
		broker:      broker,
		tournaments: service.NewTournamentService(deps),
		matches:     service.NewMatchService(deps),
	}
}

func newLocker(cfg *config.Config) (lock.Locker, error) {
	if cfg.LockBackend != config.LockRedis {
		return lock.NewLocal(), nil
	}

	client := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	slog.Info("using redis event locks", "addr", cfg.RedisAddr)
	return lock.NewRedis(client), nil
}

// sessionStore keeps sessions in the database for SQLite. Other drivers
// keep them in memory.
func sessionStore(cfg *config.Config, database *sqlx.DB) scs.Store {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite3store.New(database.DB)
	}
	return memstore.New()
}
