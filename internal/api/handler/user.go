package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/rightsquest/internal/api/request"
	"github.com/mcoot/rightsquest/internal/api/response"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/session"
	"github.com/mcoot/rightsquest/internal/services/users"
)

// UserHandler handles user and session endpoints
type UserHandler struct {
	sessions    *session.Manager
	userService *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(sessions *session.Manager, userService *users.Service) *UserHandler {
	return &UserHandler{
		sessions:    sessions,
		userService: userService,
	}
}

// userID extracts the {id} path variable
func userID(r *http.Request) model.UserID {
	return model.UserID(mux.Vars(r)["id"])
}

// Connect handles POST /api/v1/users/connect
func (h *UserHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.WalletAddress) == "" {
		WriteError(w, NewInvalidRequestError("wallet_address is required"))
		return
	}

	sess, user, err := h.sessions.Connect(r.Context(), req.WalletAddress)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ConnectResponse{
		User:    response.UserFromModel(user),
		Session: response.SessionStateFromModel(sess.State()),
	})
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Forget(r.Context(), userID(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Stats handles GET /api/v1/users/{id}/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	stats, err := sess.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	next, err := sess.NextBadge(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromModel(stats, next))
}

// Session handles GET /api/v1/users/{id}/session
func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionStateFromModel(sess.State()))
}

// Disconnect handles POST /api/v1/users/{id}/disconnect
func (h *UserHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Disconnect(r.Context(), userID(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
