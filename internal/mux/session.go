package mux

import (
	"net/http"

	"github.com/superxuu/depu/internal/jwt"
	"github.com/superxuu/depu/internal/util"
)

type postSessionPayload struct {
	Nickname string `json:"nickname"`
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	Chips        int    `json:"chips"`
	SessionToken string `json:"session_token"`
	JWT          string `json:"jwt"`
}

// postSession logs a player in by nickname. A blank nickname gets a random
// one.
func (m *Mux) postSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postSessionPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		if payload.Nickname == "" {
			payload.Nickname = util.GetRandomName()
		}

		user, sessionToken, err := m.accounts.Login(payload.Nickname)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		signedJWT, err := jwt.Sign(user.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, sessionResponse{
			UserID:       user.ID,
			Nickname:     user.Nickname,
			Chips:        user.Chips,
			SessionToken: sessionToken,
			JWT:          signedJWT,
		})
	}
}
