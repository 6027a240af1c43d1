package httpapi

import (
	"net/http"

	"StravaFriendsDashboard/internal/domain"
)

func (a *api) handleSync(w http.ResponseWriter, r *http.Request) {
	sess, ok := CurrentSession(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if !a.syncLimiter.Allow("user:"+sess.UserID, a.now()) {
		WriteDomainError(w, domain.ErrRateLimited)
		return
	}

	res, err := a.syncSvc.Synchronize(r.Context(), sess)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
