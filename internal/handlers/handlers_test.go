package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/sequence"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/services"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store/embedded"
)

func setupHandlers(t *testing.T) (*ContractHandler, *BatchHandler, *RemittanceHandler, *ReportHandler) {
	t.Helper()
	s, err := embedded.Open(fmt.Sprintf("file:h_%s?mode=memory&cache=shared", t.Name()), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	stores := s.Stores()
	guard := policy.NewGuard(stores.Memberships, stores.Contracts, stores.Products)
	seq, err := sequence.New(1)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	contracts := services.NewContractService(stores.Contracts, guard, seq, nil)
	batches := services.NewBatchService(stores.Batches, stores.Contracts, guard, seq, nil)
	remittances := services.NewRemittanceService(stores.Remittances, guard, seq, nil)
	return NewContractHandler(contracts), NewBatchHandler(batches), NewRemittanceHandler(remittances), NewReportHandler(contracts)
}

func asActor(r *http.Request, actor auth.Actor) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), actor))
}

var testStaff = auth.Actor{ID: "st-1", Email: "staff@dealer.ca", Role: auth.RoleDealerStaff, DealerID: "dealer-1"}

func TestContractCreateGetUpdateFlow(t *testing.T) {
	ch, _, _, _ := setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contracts",
		strings.NewReader(`{"customerName":"Jane Roy","pricingBasePriceCents":50000,"pricingDealerCostCents":30000}`))
	w := httptest.NewRecorder()
	ch.Create(w, asActor(req, testStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var created models.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != models.ContractStatusDraft || created.WarrantyID == "" {
		t.Errorf("created = status %q warranty %q", created.Status, created.WarrantyID)
	}

	// Advance to SOLD through the update endpoint.
	req = httptest.NewRequest(http.MethodPatch, "/api/contracts/"+created.ID,
		strings.NewReader(`{"status":"SOLD"}`))
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	ch.Update(w, asActor(req, testStaff))
	if w.Code != http.StatusOK {
		t.Fatalf("sell: expected 200 got %d: %s", w.Code, w.Body.String())
	}

	// Post-sale field edit conflicts.
	req = httptest.NewRequest(http.MethodPatch, "/api/contracts/"+created.ID,
		strings.NewReader(`{"customerName":"Changed"}`))
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	ch.Update(w, asActor(req, testStaff))
	if w.Code != http.StatusConflict {
		t.Errorf("locked edit: expected 409 got %d", w.Code)
	}

	// Skipping a step conflicts too.
	req = httptest.NewRequest(http.MethodPatch, "/api/contracts/"+created.ID,
		strings.NewReader(`{"status":"PAID"}`))
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	ch.Update(w, asActor(req, testStaff))
	if w.Code != http.StatusConflict {
		t.Errorf("skip transition: expected 409 got %d", w.Code)
	}
}

func TestContractGetUnknownIs404(t *testing.T) {
	ch, _, _, _ := setupHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/contracts/nope", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	ch.Get(w, asActor(req, testStaff))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 got %d", w.Code)
	}
}

func TestContractCreateValidation(t *testing.T) {
	ch, _, _, _ := setupHandlers(t)
	req := httptest.NewRequest(http.MethodPost, "/api/contracts", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	ch.Create(w, asActor(req, testStaff))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 got %d: %s", w.Code, w.Body.String())
	}
}

func TestBatchEndpointsEnforceRole(t *testing.T) {
	_, bh, _, _ := setupHandlers(t)

	// Staff cannot open batches; the denial reads as not found.
	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	bh.Create(w, asActor(req, testStaff))
	if w.Code != http.StatusNotFound {
		t.Errorf("staff batch create: expected 404 got %d", w.Code)
	}

	admin := auth.Actor{ID: "da-1", Email: "admin@dealer.ca", Role: auth.RoleDealerAdmin, DealerID: "dealer-1"}
	req = httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(`{"taxRatePct":13}`))
	w = httptest.NewRecorder()
	bh.Create(w, asActor(req, admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("admin batch create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var b models.Batch
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Status != models.BatchStatusOpen || b.PaymentStatus != models.BatchPaymentUnpaid {
		t.Errorf("new batch = %s/%s, want OPEN/UNPAID", b.Status, b.PaymentStatus)
	}

	// Paying an open batch conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/batches/"+b.ID+"/pay", nil)
	req.SetPathValue("id", b.ID)
	w = httptest.NewRecorder()
	bh.MarkPaid(w, asActor(req, admin))
	if w.Code != http.StatusConflict {
		t.Errorf("pay open batch: expected 409 got %d: %s", w.Code, w.Body.String())
	}
}

func TestRemittanceUpdateRejectsUnknownStatus(t *testing.T) {
	_, _, rh, _ := setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/remittances",
		strings.NewReader(`{"amountCents":25000}`))
	w := httptest.NewRecorder()
	rh.Create(w, asActor(req, testStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var rem models.Remittance
	if err := json.Unmarshal(w.Body.Bytes(), &rem); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/remittances/"+rem.ID,
		strings.NewReader(`{"status":"CANCELLED"}`))
	req.SetPathValue("id", rem.ID)
	w = httptest.NewRecorder()
	rh.Update(w, asActor(req, testStaff))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400 got %d", w.Code)
	}
}

func TestReportTotalsEndpoint(t *testing.T) {
	ch, _, _, reph := setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contracts",
		strings.NewReader(`{"customerName":"Jane Roy","pricingBasePriceCents":50000,"pricingDealerCostCents":30000}`))
	w := httptest.NewRecorder()
	ch.Create(w, asActor(req, testStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created models.Contract
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	req = httptest.NewRequest(http.MethodPatch, "/api/contracts/"+created.ID, strings.NewReader(`{"status":"SOLD"}`))
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	ch.Update(w, asActor(req, testStaff))
	if w.Code != http.StatusOK {
		t.Fatalf("sell: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reports/totals", nil)
	w = httptest.NewRecorder()
	reph.Totals(w, asActor(req, testStaff))
	if w.Code != http.StatusOK {
		t.Fatalf("totals: expected 200 got %d", w.Code)
	}
	var totals struct {
		Count       int   `json:"count"`
		RetailCents int64 `json:"retailCents"`
		MarginCents int64 `json:"marginCents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if totals.Count != 1 || totals.RetailCents != 50000 || totals.MarginCents != 20000 {
		t.Errorf("totals = %+v", totals)
	}
}
