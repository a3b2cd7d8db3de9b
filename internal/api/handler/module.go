package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rightsquest/internal/api/response"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/session"
)

// ModuleHandler handles learning module endpoints
type ModuleHandler struct {
	sessions *session.Manager
}

// NewModuleHandler creates a new module handler
func NewModuleHandler(sessions *session.Manager) *ModuleHandler {
	return &ModuleHandler{sessions: sessions}
}

// List handles GET /api/v1/users/{id}/modules
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	statuses, err := sess.Modules(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.ModuleStatus, len(statuses))
	for i, s := range statuses {
		out[i] = response.ModuleStatusFromModel(s)
	}
	response.JSON(w, http.StatusOK, out)
}

// Start handles POST /api/v1/users/{id}/modules/{module_id}/start
func (h *ModuleHandler) Start(w http.ResponseWriter, r *http.Request) {
	moduleID := model.ModuleID(mux.Vars(r)["module_id"])

	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	user, completion, err := sess.StartModule(r.Context(), moduleID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StartModuleResponseFromModel(user, completion))
}
