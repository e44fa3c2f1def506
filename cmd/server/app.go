package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/handlers"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	log *zap.Logger
}

// NewApp wires services and handlers over the selected store backend.
func NewApp(stores store.Stores, seq *sequence.Generator, log *zap.Logger) *App {
	guard := policy.NewGuard(stores.Memberships, stores.Contracts, stores.Products)

	contractSvc := services.NewContractService(stores.Contracts, guard, seq, log)
	batchSvc := services.NewBatchService(stores.Batches, stores.Contracts, guard, seq, log)
	remittanceSvc := services.NewRemittanceService(stores.Remittances, guard, seq, log)

	app := &App{mux: http.NewServeMux(), log: log}
	app.setupRoutes(
		handlers.NewContractHandler(contractSvc),
		handlers.NewBatchHandler(batchSvc),
		handlers.NewRemittanceHandler(remittanceSvc),
		handlers.NewReportHandler(contractSvc),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

// setupRoutes configures all application routes. Every API route requires a
// session; per-record authorization happens in the service layer.
func (a *App) setupRoutes(ch *handlers.ContractHandler, bh *handlers.BatchHandler, rh *handlers.RemittanceHandler, reph *handlers.ReportHandler) {
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	a.mux.Handle("GET /api/contracts", protected(ch.List))
	a.mux.Handle("POST /api/contracts", protected(ch.Create))
	a.mux.Handle("GET /api/contracts/{id}", protected(ch.Get))
	a.mux.Handle("PATCH /api/contracts/{id}", protected(ch.Update))

	a.mux.Handle("GET /api/batches", protected(bh.List))
	a.mux.Handle("POST /api/batches", protected(bh.Create))
	a.mux.Handle("GET /api/batches/outstanding", protected(bh.Outstanding))
	a.mux.Handle("GET /api/batches/{id}", protected(bh.Get))
	a.mux.Handle("POST /api/batches/{id}/contracts", protected(bh.AddContract))
	a.mux.Handle("POST /api/batches/{id}/close", protected(bh.Close))
	a.mux.Handle("POST /api/batches/{id}/pay", protected(bh.MarkPaid))

	a.mux.Handle("GET /api/remittances", protected(rh.List))
	a.mux.Handle("POST /api/remittances", protected(rh.Create))
	a.mux.Handle("GET /api/remittances/{id}", protected(rh.Get))
	a.mux.Handle("PATCH /api/remittances/{id}", protected(rh.Update))

	a.mux.Handle("GET /api/reports/totals", protected(reph.Totals))
	a.mux.Handle("GET /api/reports/sellers", protected(reph.SellerRollup))
}
