package handlers

import (
	"net/http"
	"time"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/httpx"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
)

type ReportHandler struct {
	contracts *services.ContractService
}

func NewReportHandler(contracts *services.ContractService) *ReportHandler {
	return &ReportHandler{contracts: contracts}
}

// filterFromQuery reads dealerId/start/end query parameters. Dates are
// day-granular ("2006-01-02"); malformed dates read as unset rather than
// erroring, reports stay permissive.
func filterFromQuery(r *http.Request) services.ReportFilter {
	f := services.ReportFilter{DealerID: r.URL.Query().Get("dealerId")}
	if raw := r.URL.Query().Get("start"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.Start = t
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.End = t
		}
	}
	return f
}

func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	totals, err := h.contracts.Totals(r.Context(), actor, filterFromQuery(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) SellerRollup(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	rollup, err := h.contracts.SellerRollup(r.Context(), actor, filterFromQuery(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rollup)
}
