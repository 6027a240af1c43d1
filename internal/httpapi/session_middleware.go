package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"StravaFriendsDashboard/internal/auth"
	"StravaFriendsDashboard/internal/domain"
)

type authCtxKey int

const (
	authUserKey authCtxKey = iota
	authSessionKey
)

// requireSession resolves the signed session cookie once per request. Handlers
// read the result with CurrentSession and CurrentUser.
func (a *api) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, u, err := a.sessionFromRequest(r)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, u)
		ctx = context.WithValue(ctx, authSessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (a *api) sessionFromRequest(r *http.Request) (domain.Session, domain.User, error) {
	c, err := r.Cookie(auth.SessionCookieName)
	if err != nil || c.Value == "" {
		return domain.Session{}, domain.User{}, domain.ErrUnauthorized
	}

	sessID, ok := a.cookieCodec.Decode(c.Value)
	if !ok {
		return domain.Session{}, domain.User{}, domain.ErrUnauthorized
	}

	return a.authSvc.ResolveSession(r.Context(), sessID)
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

func CurrentSession(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(authSessionKey).(domain.Session)
	return s, ok
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
