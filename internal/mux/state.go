package mux

import (
	"net/http"

	"github.com/superxuu/depu/pkg/account"
)

// getState returns the caller's view of the table over plain HTTP, for
// clients catching up before opening a websocket
func (m *Mux) getState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(ctxUserKey).(account.User)
		writeJSON(w, http.StatusOK, m.host.SnapshotFor(user.ID))
	}
}
