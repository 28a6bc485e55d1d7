package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitrine-app/vitrine/internal/api/respond"
	"github.com/vitrine-app/vitrine/internal/api/validate"
	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/services"
)

// CollectionHandler is a thin HTTP transport over CollectionService.
type CollectionHandler struct {
	svc *services.CollectionService
}

func NewCollectionHandler(svc *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// ListAccessible GET /api/me/collections
func (h *CollectionHandler) ListAccessible(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	cols, err := h.svc.ListAccessibleCollections(r.Context(), id.UserID, id.IsAdmin)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"collections": cols, "count": len(cols)})
}

// CreateCollection POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req struct {
		Name string     `json:"name"`
		Kind model.Kind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateCollection(req.Name, req.Kind); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	c, err := h.svc.CreateCollection(r.Context(), id.UserID, req.Name, req.Kind)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}

// GrantAccess PUT /api/collections/{collectionId}/grants/{userId}
func (h *CollectionHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	vars := mux.Vars(r)
	var req struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Grant(vars["collectionId"], vars["userId"], req.Role); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	g, err := h.svc.GrantAccess(r.Context(), actor, vars["collectionId"], vars["userId"], req.Role)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, g)
}

// RevokeAccess DELETE /api/collections/{collectionId}/grants/{userId}
func (h *CollectionHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	vars := mux.Vars(r)
	if err := h.svc.RevokeAccess(r.Context(), actor, vars["collectionId"], vars["userId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
