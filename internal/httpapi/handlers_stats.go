package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"StravaFriendsDashboard/internal/domain"
	"StravaFriendsDashboard/internal/stats"
)

func (a *api) handleStats(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	fields := map[string]string{}
	page := queryInt(q.Get("page"), "page", fields)
	perPage := queryInt(q.Get("perPage"), "perPage", fields)
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	out, err := a.statsSvc.Dashboard(r.Context(), u.ID, page, perPage)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleGraphs(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	period := stats.ParsePeriod(strings.ToLower(strings.TrimSpace(q.Get("period"))))
	includeFriends := q.Get("includeFriends") == "true"

	out, err := a.statsSvc.Graphs(r.Context(), u.ID, period, includeFriends)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// queryInt parses an optional positive integer. Zero means "use the default".
func queryInt(raw, name string, fields map[string]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		fields[name] = "must be a positive integer"
		return 0
	}
	return n
}
