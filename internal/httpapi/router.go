package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"StravaFriendsDashboard/internal/auth"
	"StravaFriendsDashboard/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing  func(context.Context) error
	Metrics http.Handler

	Auth    *service.AuthService
	Sync    *service.SyncService
	Stats   *service.StatsService
	Friends *service.FriendsService

	CookieCodec  auth.CookieCodec
	CookieSecure bool
	SessionTTL   time.Duration

	SyncLimit  int
	SyncWindow time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		authSvc:      opts.Auth,
		syncSvc:      opts.Sync,
		statsSvc:     opts.Stats,
		friendsSvc:   opts.Friends,
		cookieCodec:  opts.CookieCodec,
		cookieSecure: opts.CookieSecure,
		sessionTTL:   opts.SessionTTL,
		syncLimiter:  newSyncLimiter(opts.SyncLimit, opts.SyncWindow),
		now:          time.Now,
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /{$}", api.handleHome)
	publicMux.HandleFunc("GET /healthz", api.handleHealthz)
	if opts.Metrics != nil {
		publicMux.Handle("GET /metrics", opts.Metrics)
	}

	if api.authSvc == nil {
		apiMux.HandleFunc("GET /v1/auth/signin", handleNotImplemented)
		apiMux.HandleFunc("GET /v1/auth/callback", handleNotImplemented)
		apiMux.HandleFunc("GET /v1/auth/session", handleNotImplemented)
	} else {
		apiMux.HandleFunc("GET /v1/auth/signin", api.handleAuthSignin)
		apiMux.HandleFunc("GET /v1/auth/callback", api.handleAuthCallback)
		apiMux.HandleFunc("GET /v1/auth/signout", api.handleAuthSignout)
		apiMux.HandleFunc("GET /v1/auth/session", api.handleAuthSession)
		apiMux.HandleFunc("POST /v1/auth/logout", api.requireSession(api.handleAuthLogout))

		if api.syncSvc != nil {
			apiMux.HandleFunc("POST /v1/sync", api.requireSession(api.handleSync))
		}

		if api.statsSvc != nil {
			apiMux.HandleFunc("GET /v1/stats", api.requireSession(api.handleStats))
			apiMux.HandleFunc("GET /v1/graphs", api.requireSession(api.handleGraphs))
		}

		if api.friendsSvc != nil {
			apiMux.HandleFunc("GET /v1/friends", api.requireSession(api.handleFriendsList))
			apiMux.HandleFunc("POST /v1/friends", api.requireSession(api.handleFriendsAdd))
			apiMux.HandleFunc("DELETE /v1/friends/{friendId}", api.requireSession(api.handleFriendsRemove))
			apiMux.HandleFunc("GET /v1/friends/{friendId}/stats", api.requireSession(api.handleFriendStats))
		}
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler only matches; ServeHTTP also fills the request's path values.
		if _, pattern := apiMux.Handler(r); pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		apiMux.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc      *service.AuthService
	syncSvc      *service.SyncService
	statsSvc     *service.StatsService
	friendsSvc   *service.FriendsService
	cookieCodec  auth.CookieCodec
	cookieSecure bool
	sessionTTL   time.Duration

	syncLimiter *syncLimiter
	now         func() time.Time
}

// handleHome is the landing target of the OAuth redirects. The dashboard UI
// is served separately; this only echoes the outcome.
func (a *api) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	WriteJSON(w, http.StatusOK, map[string]any{
		"service":       "strava-friends-dashboard",
		"authenticated": q.Get("authenticated") == "true",
		"error":         q.Get("error"),
	})
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
