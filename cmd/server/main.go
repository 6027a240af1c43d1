package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StravaFriendsDashboard/internal/auth"
	"StravaFriendsDashboard/internal/config"
	"StravaFriendsDashboard/internal/events"
	"StravaFriendsDashboard/internal/httpapi"
	"StravaFriendsDashboard/internal/service"
	"StravaFriendsDashboard/internal/store/postgres"
	"StravaFriendsDashboard/internal/strava"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		_, _ = os.Stderr.WriteString("load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	var (
		authSvc    *service.AuthService
		syncSvc    *service.SyncService
		statsSvc   *service.StatsService
		friendsSvc *service.FriendsService
		dbPing     func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if err := postgres.Migrate(context.Background(), pgPool); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		var sealer postgres.TokenSealer
		if cfg.TokenKey != "" {
			key, err := auth.ParseTokenKey(cfg.TokenKey)
			if err != nil {
				logger.Error("APP_TOKEN_KEY invalid", "err", err)
				os.Exit(1)
			}
			sealer = auth.NewTokenSealer(key)
		} else {
			logger.Warn("APP_TOKEN_KEY not set: strava tokens are stored unencrypted")
		}

		users := postgres.NewUsersStore(pgPool, sealer)
		sessions := postgres.NewSessionsStore(pgPool)
		activities := postgres.NewActivitiesStore(pgPool)
		friends := postgres.NewFriendsStore(pgPool)

		stravaClient := strava.NewClient(strava.ClientOpts{
			BaseURL: cfg.StravaAPIURL,
			Timeout: cfg.StravaTimeout,
		})
		oauth := auth.NewStravaOAuth(auth.StravaOAuthOpts{
			ClientID:     cfg.StravaClientID,
			ClientSecret: cfg.StravaClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL(),
			BaseURL:      cfg.StravaOAuthURL,
			HTTPClient:   &http.Client{Timeout: cfg.StravaTimeout},
		})

		authSvc = &service.AuthService{
			OAuth:      oauth,
			Source:     stravaClient,
			Users:      users,
			Sessions:   sessions,
			SessionTTL: cfg.SessionTTL,
			Now:        time.Now,
		}
		syncSvc = &service.SyncService{
			Users:      users,
			Activities: activities,
			Source:     stravaClient,
			Logger:     logger,
			Now:        time.Now,
		}
		statsSvc = &service.StatsService{
			Activities: activities,
			Friends:    friends,
			Now:        time.Now,
		}
		friendsSvc = &service.FriendsService{
			Friends:    friends,
			Activities: activities,
			NewID:      uuid.NewString,
		}
		dbPing = pgPool.Ping

		if len(cfg.KafkaBrokers) > 0 {
			pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer func() {
				if err := pub.Close(); err != nil {
					logger.Warn("kafka publisher close failed", "err", err)
				}
			}()
			syncSvc.Events = pub
			logger.Info("sync events enabled", "topic", cfg.KafkaTopic, "brokers", len(cfg.KafkaBrokers))
		}
	} else {
		logger.Warn("APP_DB_DSN not set: auth, sync and dashboard routes are disabled")
	}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		DBPing:       dbPing,
		Metrics:      promhttp.Handler(),
		Auth:         authSvc,
		Sync:         syncSvc,
		Stats:        statsSvc,
		Friends:      friendsSvc,
		CookieCodec:  auth.NewCookieCodec([]byte(cfg.CookieSecret)),
		CookieSecure: cfg.CookieSecure(),
		SessionTTL:   cfg.SessionTTL,
		SyncLimit:    cfg.SyncLimit,
		SyncWindow:   cfg.SyncWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr, "base_url", cfg.BaseURL())
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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
