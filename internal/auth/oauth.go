package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"StravaFriendsDashboard/internal/domain"
)

const (
	DefaultStravaOAuthURL = "https://www.strava.com/oauth"

	// Strava expects comma-separated scopes, which oauth2.Config would join
	// with spaces, so the scope goes in as a raw auth URL parameter.
	stravaScope = "read,activity:read_all"
)

type StravaOAuthOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	BaseURL      string
	HTTPClient   *http.Client
}

// StravaOAuth runs the authorization-code flow against Strava.
type StravaOAuth struct {
	cfg        oauth2.Config
	httpClient *http.Client
}

func NewStravaOAuth(opts StravaOAuthOpts) *StravaOAuth {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultStravaOAuthURL
	}
	return &StravaOAuth{
		cfg: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/authorize",
				TokenURL:  base + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: opts.HTTPClient,
	}
}

func (o *StravaOAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "auto"),
		oauth2.SetAuthURLParam("scope", stravaScope),
	)
}

func (o *StravaOAuth) Exchange(ctx context.Context, code string) (domain.OAuthToken, error) {
	if strings.TrimSpace(code) == "" {
		return domain.OAuthToken{}, errors.New("missing authorization code")
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.OAuthToken{}, fmt.Errorf("exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return domain.OAuthToken{}, errors.New("exchange code: empty access token")
	}

	return domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}
