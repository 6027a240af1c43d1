package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StravaFriendsDashboard/internal/domain"
)

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.OAuthToken, error)
}

type AuthService struct {
	OAuth      OAuthProvider
	Source     ActivitySource
	Users      UsersStore
	Sessions   SessionsStore
	SessionTTL time.Duration
	Now        func() time.Time
}

func (s *AuthService) StartLogin(state string) string {
	return s.OAuth.AuthCodeURL(state)
}

// CompleteLogin exchanges the authorization code, verifies the athlete behind
// the token and opens a session for them.
func (s *AuthService) CompleteLogin(ctx context.Context, code, ip, userAgent string) (domain.User, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.User{}, "", domain.NewValidationError(map[string]string{"code": "required"})
	}

	tok, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}

	athlete, err := s.Source.GetAthlete(ctx, tok.AccessToken)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %w", domain.ErrAthleteFetch, err)
	}

	expiresAt := tok.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(tokenLifetime)
	}
	u := domain.User{
		ID:           athlete.ID,
		Name:         athlete.DisplayName(),
		Image:        athlete.Image,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt.Unix(),
	}
	if err := s.Users.UpsertUser(ctx, u); err != nil {
		return domain.User{}, "", err
	}

	sessID, err := s.Sessions.CreateSession(ctx, u.ID, s.now().Add(s.SessionTTL), ip, userAgent)
	if err != nil {
		return domain.User{}, "", err
	}

	return u, sessID, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.RevokeSession(ctx, sessionID, s.now())
}

// ResolveSession maps a session ID to the caller and the Strava credentials
// stored for them.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (domain.Session, domain.User, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.User{}, domain.ErrUnauthorized
		}
		return domain.Session{}, domain.User{}, err
	}

	u, err := s.Users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.User{}, domain.ErrUnauthorized
		}
		return domain.Session{}, domain.User{}, err
	}

	return domain.Session{
		ID:           sess.ID,
		UserID:       u.ID,
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
	}, u, nil
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
