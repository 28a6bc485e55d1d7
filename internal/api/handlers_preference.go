package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vitrine-app/vitrine/internal/api/respond"
	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/services"
)

// PreferenceHandler serves the caller's durable selection preference.
type PreferenceHandler struct {
	svc *services.PreferenceService
}

func NewPreferenceHandler(svc *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// GetPreference GET /api/me/preference
// A user without a saved preference gets an object with only userId set.
func (h *PreferenceHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	p, err := h.svc.LoadPreference(r.Context(), id.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if p == nil {
		p = &model.SelectionPreference{UserID: id.UserID}
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// PutLastSelected PUT /api/me/preference/last-selected
func (h *PreferenceHandler) PutLastSelected(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, h.svc.SaveLastSelected)
}

// PutDefault PUT /api/me/preference/default
func (h *PreferenceHandler) PutDefault(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, h.svc.SaveDefault)
}

func (h *PreferenceHandler) put(w http.ResponseWriter, r *http.Request, save func(context.Context, string, string) (*model.SelectionPreference, error)) {
	id, _ := auth.FromContext(r.Context())
	var req struct {
		CollectionID string `json:"collectionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	p, err := save(r.Context(), id.UserID, req.CollectionID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}
