package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/httpx"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

type BatchHandler struct {
	svc *services.BatchService
}

func NewBatchHandler(svc *services.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	batches, err := h.svc.List(r.Context(), actor)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	b, err := h.svc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var in store.BatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	b, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *BatchHandler) AddContract(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	var body struct {
		ContractID string `json:"contractId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ContractID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	b, err := h.svc.AddContract(r.Context(), actor, r.PathValue("id"), body.ContractID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *BatchHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	b, err := h.svc.Close(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *BatchHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	b, err := h.svc.MarkPaid(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *BatchHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	dealerID := r.URL.Query().Get("dealerId")
	if dealerID == "" {
		dealerID = actor.DealerID
	}
	owed, err := h.svc.Outstanding(r.Context(), actor, dealerID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"dealerId":         dealerID,
		"outstandingCents": owed,
	})
}
