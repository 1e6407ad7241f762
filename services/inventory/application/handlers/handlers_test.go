package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/config"
	"github.com/ghuser/closetline/pkg/logger"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
	invdomain "github.com/ghuser/closetline/services/inventory/domain"
	"github.com/ghuser/closetline/services/inventory/domain/models"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
)

// memItemRepo is a minimal in-memory ItemRepository for handler tests.
type memItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Item
}

func (r *memItemRepo) Save(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.OrgID != orgID {
		return nil, invdomain.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) FindByOrgID(_ context.Context, orgID uuid.UUID, _ repositories.QueryOpts) ([]*models.Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Item
	for _, item := range r.items {
		if item.OrgID == orgID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *memItemRepo) FindAll(ctx context.Context, orgID uuid.UUID) ([]*models.Item, error) {
	items, _, err := r.FindByOrgID(ctx, orgID, repositories.QueryOpts{})
	return items, err
}

func (r *memItemRepo) FindInConvention(ctx context.Context, orgID uuid.UUID) ([]*models.Item, error) {
	all, err := r.FindAll(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var out []*models.Item
	for _, item := range all {
		if item.InConvention {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memItemRepo) ListOrgIDs(_ context.Context) ([]uuid.UUID, error) { return nil, nil }

func (r *memItemRepo) Update(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if !ok {
		return invdomain.ErrItemNotFound
	}
	cp := *item
	cp.EverInConvention = cp.EverInConvention || stored.EverInConvention
	r.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.OrgID != orgID {
		return invdomain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memItemRepo) Exists(_ context.Context, orgID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return ok && item.OrgID == orgID, nil
}

// memCapitalRepo is a minimal in-memory CapitalRepository for handler tests.
type memCapitalRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.CapitalAccount
	entries  []*models.LedgerEntry
}

func (r *memCapitalRepo) GetOrCreate(_ context.Context, orgID uuid.UUID) (*models.CapitalAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[orgID]
	if !ok {
		acct = &models.CapitalAccount{OrgID: orgID, Version: 1, UpdatedAt: time.Now().UTC()}
		r.accounts[orgID] = acct
	}
	cp := *acct
	return &cp, nil
}

func (r *memCapitalRepo) ApplyDelta(_ context.Context, orgID, itemID uuid.UUID, reason models.LedgerReason, amount decimal.Decimal, expectedVersion int64) (*models.CapitalAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[orgID]
	if !ok {
		return nil, invdomain.ErrCapitalAccountNotFound
	}
	if acct.Version != expectedVersion {
		return nil, invdomain.ErrConcurrentUpdateConflict
	}
	acct.CashOnHand = acct.CashOnHand.Add(amount)
	acct.Version++
	r.entries = append(r.entries, &models.LedgerEntry{
		ID: uuid.New(), OrgID: orgID, ItemID: itemID,
		Reason: reason, Amount: amount, Balance: acct.CashOnHand, CreatedAt: time.Now().UTC(),
	})
	cp := *acct
	return &cp, nil
}

func (r *memCapitalRepo) AdjustInvestments(_ context.Context, orgID uuid.UUID, partnerA, partnerB decimal.Decimal) (*models.CapitalAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[orgID]
	if !ok {
		return nil, invdomain.ErrCapitalAccountNotFound
	}
	acct.PartnerAInvestment = partnerA
	acct.PartnerBInvestment = partnerB
	acct.Version++
	cp := *acct
	return &cp, nil
}

func (r *memCapitalRepo) ListEntries(_ context.Context, orgID uuid.UUID, _ repositories.QueryOpts) ([]*models.LedgerEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range r.entries {
		if e.OrgID == orgID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (r *memCapitalRepo) SumEntries(_ context.Context, orgID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.OrgID == orgID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func testRouter(t *testing.T, orgID uuid.UUID) (*chi.Mux, *memCapitalRepo) {
	t.Helper()
	items := &memItemRepo{items: make(map[uuid.UUID]*models.Item)}
	capital := &memCapitalRepo{accounts: make(map[uuid.UUID]*models.CapitalAccount)}
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{
		Inventory: appsvcs.NewInventoryService(items, appsvcs.NewLedgerAdjuster(capital, nil, log), nil, nil, nil, log, 0),
	}

	r := chi.NewRouter()
	if orgID != uuid.Nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithOrgID(req.Context(), orgID)))
			})
		})
	}

	getItems := NewGetItemsHandler(svcs)
	convention := NewConventionHandler(svcs)
	capitalH := NewCapitalHandler(svcs)
	r.Route("/items", func(r chi.Router) {
		r.Post("/", NewPostItemHandler(svcs).Execute)
		r.Get("/", getItems.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getItems.Get)
			r.Patch("/", NewPatchItemHandler(svcs).Execute)
			r.Delete("/", NewDeleteItemHandler(svcs).Execute)
			r.Post("/sold", NewMarkSoldHandler(svcs).Execute)
			r.Post("/traded", NewMarkTradedHandler(svcs).Execute)
			r.Put("/convention", convention.Tag)
		})
	})
	r.Get("/summary", NewSummaryHandler(svcs).Execute)
	r.Post("/convention/sweep", convention.Sweep)
	r.Route("/capital", func(r chi.Router) {
		r.Get("/", capitalH.Get)
		r.Patch("/", capitalH.AdjustInvestments)
		r.Get("/ledger", capitalH.Ledger)
	})
	return r, capital
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createItem(t *testing.T, router http.Handler, body map[string]any) ItemResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/items", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: status %d, body %s", w.Code, w.Body.String())
	}
	var resp ItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestPostItem(t *testing.T) {
	router, capital := testRouter(t, uuid.New())

	t.Run("creates and deducts shared cost", func(t *testing.T) {
		resp := createItem(t, router, map[string]any{
			"name":             "Vintage band tee",
			"acquisition_cost": 40,
			"paid_by":          "shared",
		})
		if resp.Status != "in-closet" {
			t.Errorf("status = %s, want in-closet", resp.Status)
		}

		acct, _ := capital.GetOrCreate(context.Background(), resp.OrgID)
		if !acct.CashOnHand.Equal(decimal.NewFromInt(-40)) {
			t.Errorf("cash = %s, want -40", acct.CashOnHand)
		}
	})

	t.Run("missing paid_by is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/items", map[string]any{"name": "x"})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewBufferString("{nope"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestUnauthenticatedRequests(t *testing.T) {
	router, _ := testRouter(t, uuid.Nil)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/items"},
		{http.MethodGet, "/items"},
		{http.MethodGet, "/summary"},
		{http.MethodGet, "/capital"},
		{http.MethodPost, "/convention/sweep"},
	}
	for _, p := range paths {
		w := doJSON(t, router, p.method, p.path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestMarkSoldEndpoint(t *testing.T) {
	router, capital := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 40, "paid_by": "shared",
	})

	t.Run("first sale succeeds", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/items/"+item.ID.String()+"/sold", map[string]any{"sale_price": 90})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		acct, _ := capital.GetOrCreate(context.Background(), item.OrgID)
		if !acct.CashOnHand.Equal(decimal.NewFromInt(50)) {
			t.Errorf("cash = %s, want 50", acct.CashOnHand)
		}
	})

	t.Run("resubmit returns 409", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/items/"+item.ID.String()+"/sold", map[string]any{"sale_price": 90})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("unknown item returns 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/items/"+uuid.NewString()+"/sold", map[string]any{"sale_price": 90})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/items/not-a-uuid/sold", map[string]any{"sale_price": 90})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestPatchItemEndpoint(t *testing.T) {
	router, capital := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 120, "paid_by": "shared",
	})

	t.Run("refund restores cost", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/items/"+item.ID.String(), map[string]any{"status": "refunded"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		acct, _ := capital.GetOrCreate(context.Background(), item.OrgID)
		if !acct.CashOnHand.IsZero() {
			t.Errorf("cash = %s, want 0 after refund", acct.CashOnHand)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/items/"+item.ID.String(), map[string]any{"status": "misplaced"})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})
}

func TestConventionEndpoints(t *testing.T) {
	router, _ := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 10, "paid_by": "partner-a",
	})

	t.Run("tagging sets both flags", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/items/"+item.ID.String()+"/convention", map[string]any{"active": true})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp ItemResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if !resp.InConvention || !resp.EverInConvention {
			t.Errorf("expected both flags set, got %+v", resp)
		}
	})

	t.Run("untagging keeps the latch", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/items/"+item.ID.String()+"/convention", map[string]any{"active": false})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp ItemResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.InConvention {
			t.Error("expected active flag cleared")
		}
		if !resp.EverInConvention {
			t.Error("historical latch must survive untagging")
		}
	})

	t.Run("sweep with past event end releases", func(t *testing.T) {
		tag := doJSON(t, router, http.MethodPut, "/items/"+item.ID.String()+"/convention", map[string]any{"active": true})
		if tag.Code != http.StatusOK {
			t.Fatalf("tag: status %d", tag.Code)
		}

		end := time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC3339)
		w := doJSON(t, router, http.MethodPost, "/convention/sweep", map[string]any{"event_end": end})
		if w.Code != http.StatusOK {
			t.Fatalf("sweep: status %d, body %s", w.Code, w.Body.String())
		}
		var resp SweepResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Count != 1 {
			t.Errorf("released count = %d, want 1", resp.Count)
		}
	})

	t.Run("sweep accepts an empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/convention/sweep", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestSummaryEndpoint(t *testing.T) {
	router, _ := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 50, "paid_by": "shared",
	})
	if w := doJSON(t, router, http.MethodPost, "/items/"+item.ID.String()+"/sold", map[string]any{"sale_price": 90}); w.Code != http.StatusOK {
		t.Fatalf("sale: status %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var summary models.FinancialSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.SoldItems != 1 || !summary.TotalProfit.Equal(decimal.NewFromInt(40)) {
		t.Errorf("summary wrong: %+v", summary)
	}
}

func TestCapitalEndpoints(t *testing.T) {
	router, _ := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 40, "paid_by": "shared",
	})

	t.Run("get reflects ledger activity", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/capital", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp CapitalResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if !resp.CashOnHand.Equal(decimal.NewFromInt(-40)) {
			t.Errorf("cash = %s, want -40", resp.CashOnHand)
		}
	})

	t.Run("ledger lists the acquisition entry", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/capital/ledger", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp ListLedgerResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Total != 1 || len(resp.Entries) != 1 {
			t.Fatalf("expected one entry, got %+v", resp)
		}
		if resp.Entries[0].Reason != "acquisition" || resp.Entries[0].ItemID != item.ID {
			t.Errorf("entry wrong: %+v", resp.Entries[0])
		}
	})

	t.Run("patch sets investments", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/capital", map[string]any{
			"partner_a_investment": 500,
			"partner_b_investment": 250,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp CapitalResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if !resp.PartnerAInvestment.Equal(decimal.NewFromInt(500)) {
			t.Errorf("partner a = %s, want 500", resp.PartnerAInvestment)
		}
	})

	t.Run("negative investment is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/capital", map[string]any{
			"partner_a_investment": -1,
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})
}

func TestDeleteEndpoint(t *testing.T) {
	router, capital := testRouter(t, uuid.New())
	item := createItem(t, router, map[string]any{
		"name": "tee", "acquisition_cost": 40, "paid_by": "shared",
	})

	w := doJSON(t, router, http.MethodDelete, "/items/"+item.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	// Financially silent: the acquisition deduction stays.
	acct, _ := capital.GetOrCreate(context.Background(), item.OrgID)
	if !acct.CashOnHand.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("cash = %s, want -40", acct.CashOnHand)
	}

	if w := doJSON(t, router, http.MethodGet, "/items/"+item.ID.String(), nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}
