// Package handlers exposes the lifecycle engine over JSON HTTP. Handlers
// resolve the session actor explicitly and pass it into every service call;
// no service reads ambient auth state.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/httpx"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

type ContractHandler struct {
	svc *services.ContractService
}

func NewContractHandler(svc *services.ContractService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	contracts, err := h.svc.List(r.Context(), actor)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contracts)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	c, err := h.svc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var in store.ContractInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update accepts either a status change or a field edit, never both in one
// request.
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	id := r.PathValue("id")

	var body struct {
		Status *string `json:"status"`
		store.ContractFieldEdit
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if body.Status != nil {
		c, err := h.svc.ChangeStatus(r.Context(), actor, id, *body.Status)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
		return
	}

	c, err := h.svc.Edit(r.Context(), actor, id, body.ContractFieldEdit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
