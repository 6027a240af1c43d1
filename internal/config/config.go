package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env          string
	Addr         string
	PublicURL    *url.URL
	DBDSN        string
	CookieSecret string
	SessionTTL   time.Duration
	LogLevel     string

	StravaClientID     string
	StravaClientSecret string
	StravaAPIURL       string
	StravaOAuthURL     string
	StravaTimeout      time.Duration

	// TokenKey seals Strava tokens at rest; hex or base64 of 32 bytes.
	TokenKey string

	KafkaBrokers []string
	KafkaTopic   string

	SyncLimit  int
	SyncWindow time.Duration
}

func Load() (Config, error) {
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:                getenv("APP_ENV"),
		Addr:               getenv("APP_ADDR"),
		DBDSN:              getenv("APP_DB_DSN"),
		LogLevel:           getenv("APP_LOG_LEVEL"),
		CookieSecret:       getenv("APP_COOKIE_SECRET"),
		StravaClientID:     strings.TrimSpace(getenv("APP_STRAVA_CLIENT_ID")),
		StravaClientSecret: getenv("APP_STRAVA_CLIENT_SECRET"),
		StravaAPIURL:       strings.TrimSpace(getenv("APP_STRAVA_API_URL")),
		StravaOAuthURL:     strings.TrimSpace(getenv("APP_STRAVA_OAUTH_URL")),
		TokenKey:           strings.TrimSpace(getenv("APP_TOKEN_KEY")),
		KafkaBrokers:       parseCSV(getenv("APP_KAFKA_BROKERS")),
		KafkaTopic:         strings.TrimSpace(getenv("APP_KAFKA_TOPIC")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "activities.synced"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(getenv, "APP_SESSION_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.StravaTimeout, err = parseDuration(getenv, "APP_STRAVA_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SyncWindow, err = parseDuration(getenv, "APP_SYNC_WINDOW", 5*time.Minute); err != nil {
		return Config{}, err
	}

	cfg.SyncLimit = 6
	if raw := strings.TrimSpace(getenv("APP_SYNC_LIMIT")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_SYNC_LIMIT: %w", err)
		}
		if n <= 0 {
			return Config{}, errors.New("APP_SYNC_LIMIT: must be > 0")
		}
		cfg.SyncLimit = n
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CookieSecret) < 32 {
			return Config{}, errors.New("APP_COOKIE_SECRET: must be at least 32 bytes in prod")
		}
		if cfg.StravaClientID == "" || cfg.StravaClientSecret == "" {
			return Config{}, errors.New("APP_STRAVA_CLIENT_ID, APP_STRAVA_CLIENT_SECRET: required in prod")
		}
		if cfg.TokenKey == "" {
			return Config{}, errors.New("APP_TOKEN_KEY: required in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

// BaseURL is the externally visible origin, without a trailing slash. It
// falls back to the listen address for local runs.
func (c Config) BaseURL() string {
	if c.PublicURL != nil {
		return strings.TrimRight(c.PublicURL.String(), "/")
	}
	addr := c.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// OAuthRedirectURL is the callback registered with Strava.
func (c Config) OAuthRedirectURL() string {
	return c.BaseURL() + "/v1/auth/callback"
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", key)
	}
	return d, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
