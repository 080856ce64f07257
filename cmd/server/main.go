package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"

	"campuslink/internal/auth"
	"campuslink/internal/config"
	"campuslink/internal/httpapi"
	"campuslink/internal/realtime"
	"campuslink/internal/service"
	"campuslink/internal/store/postgres"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	verifier := auth.NewVerifier([]byte(cfg.JWTSecret))
	hub := realtime.NewHub(logger)
	fanout := &realtime.Fanout{Registry: hub}

	var (
		connectionSvc *service.ConnectionService
		chatSvc       *service.ChatService
		gateway       http.Handler
		dbPing        func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		users := postgres.NewUsersStore(pool)
		connections := postgres.NewConnectionsStore(pool)
		messages := postgres.NewMessagesStore(pool)

		connectionSvc = &service.ConnectionService{
			Users:       users,
			Connections: connections,
			Notifier:    fanout,
		}
		chatSvc = &service.ChatService{
			Connections: connections,
			Messages:    messages,
			Notifier:    fanout,
		}
		gateway = &realtime.Gateway{
			Registry:    hub,
			Verifier:    verifier,
			Connections: connections,
			Logger:      logger,
		}
		dbPing = pool.Ping
	} else {
		logger.Warn("no APP_DB_DSN set, api disabled")
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         dbPing,
		Connections:    connectionSvc,
		Chat:           chatSvc,
		Verifier:       verifier,
		Realtime:       gateway,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
