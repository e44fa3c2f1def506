package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/httpx"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

type RemittanceHandler struct {
	svc *services.RemittanceService
}

func NewRemittanceHandler(svc *services.RemittanceService) *RemittanceHandler {
	return &RemittanceHandler{svc: svc}
}

func (h *RemittanceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	remittances, err := h.svc.List(r.Context(), actor)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, remittances)
}

func (h *RemittanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	rem, err := h.svc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rem)
}

func (h *RemittanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var in store.RemittanceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rem, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rem)
}

// Update accepts either {"status":"PAID"} or a field edit. Any status other
// than PAID is rejected here; DUE is the initial state and cannot be
// requested.
func (h *RemittanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id := r.PathValue("id")

	var body struct {
		Status *string `json:"status"`
		store.RemittanceFieldEdit
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if body.Status != nil {
		if *body.Status != models.RemittanceStatusPaid {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", *body.Status)
			return
		}
		rem, err := h.svc.MarkPaid(r.Context(), actor, id)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, rem)
		return
	}

	rem, err := h.svc.Edit(r.Context(), actor, id, body.RemittanceFieldEdit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rem)
}
