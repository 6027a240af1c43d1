package httpapi

import (
	"net/http"

	"StravaFriendsDashboard/internal/domain"
)

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.friendsSvc.List(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"friends": out})
}

type addFriendRequest struct {
	FriendID    string `json:"friendId"`
	FriendName  string `json:"friendName"`
	FriendImage string `json:"friendImage"`
}

func (a *api) handleFriendsAdd(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req addFriendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	f, err := a.friendsSvc.Add(r.Context(), u.ID, req.FriendID, req.FriendName, req.FriendImage)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, f)
}

func (a *api) handleFriendsRemove(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.friendsSvc.Remove(r.Context(), u.ID, r.PathValue("friendId")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendStats(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.friendsSvc.Stats(r.Context(), u.ID, r.PathValue("friendId"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"stats": out})
}
