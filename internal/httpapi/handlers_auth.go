package httpapi

import (
	"errors"
	"net/http"

	"StravaFriendsDashboard/internal/auth"
	"StravaFriendsDashboard/internal/domain"
)

func (a *api) handleAuthSignin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewState()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	auth.SetStateCookie(w, a.cookieCodec.Encode(state), a.cookieSecure)
	http.Redirect(w, r, a.authSvc.StartLogin(state), http.StatusFound)
}

func (a *api) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("error") != "" {
		a.logger.Warn("oauth denied", "error", q.Get("error"))
		redirectHome(w, r, "error=oauth_error")
		return
	}

	code := q.Get("code")
	if code == "" {
		redirectHome(w, r, "error=no_code")
		return
	}

	if !a.validState(r, q.Get("state")) {
		redirectHome(w, r, "error=invalid_state")
		return
	}
	auth.ClearStateCookie(w, a.cookieSecure)

	u, sessID, err := a.authSvc.CompleteLogin(r.Context(), code, clientIP(r), r.UserAgent())
	if err != nil {
		a.logger.Warn("oauth callback failed", "err", err)
		switch {
		case errors.Is(err, domain.ErrTokenExchange):
			redirectHome(w, r, "error=token_exchange_failed")
		case errors.Is(err, domain.ErrAthleteFetch):
			redirectHome(w, r, "error=athlete_fetch_failed")
		default:
			redirectHome(w, r, "error=callback_error")
		}
		return
	}

	auth.SetSessionCookie(w, a.cookieCodec.Encode(sessID), a.sessionTTL, a.cookieSecure)
	a.logger.Info("user signed in", "user_id", u.ID)
	redirectHome(w, r, "authenticated=true")
}

func (a *api) validState(r *http.Request, state string) bool {
	if state == "" {
		return false
	}
	c, err := r.Cookie(auth.StateCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	want, ok := a.cookieCodec.Decode(c.Value)
	return ok && want == state
}

// handleAuthSignout ends the session if there is one and sends the browser
// home. It never fails.
func (a *api) handleAuthSignout(w http.ResponseWriter, r *http.Request) {
	if sess, _, err := a.sessionFromRequest(r); err == nil {
		if err := a.authSvc.Logout(r.Context(), sess.ID); err != nil {
			a.logger.Warn("revoke session failed", "user_id", sess.UserID, "err", err)
		}
	}
	auth.ClearSessionCookie(w, a.cookieSecure)
	http.Redirect(w, r, "/", http.StatusFound)
}

type sessionResponse struct {
	User *domain.Profile `json:"user"`
}

func (a *api) handleAuthSession(w http.ResponseWriter, r *http.Request) {
	_, u, err := a.sessionFromRequest(r)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			a.logger.Warn("resolve session failed", "err", err)
		}
		WriteJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	p := u.Profile()
	WriteJSON(w, http.StatusOK, sessionResponse{User: &p})
}

func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := CurrentSession(r.Context())
	if !ok || sess.ID == "" {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.authSvc.Logout(r.Context(), sess.ID); err != nil {
		a.logger.Warn("revoke session failed", "user_id", sess.UserID, "err", err)
	}
	auth.ClearSessionCookie(w, a.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func redirectHome(w http.ResponseWriter, r *http.Request, query string) {
	http.Redirect(w, r, "/?"+query, http.StatusFound)
}
