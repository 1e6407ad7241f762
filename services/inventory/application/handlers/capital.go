package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	pkgvalidator "github.com/ghuser/closetline/pkg/validator"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// AdjustInvestmentsRequest is the request body for PATCH /api/capital.
// Only the partner investment balances can be set; cash-on-hand moves
// exclusively through item lifecycle events.
type AdjustInvestmentsRequest struct {
	PartnerAInvestment decimal.Decimal `json:"partner_a_investment" swaggertype:"number" example:"500.00"`
	PartnerBInvestment decimal.Decimal `json:"partner_b_investment" swaggertype:"number" example:"500.00"`
} // @name AdjustInvestmentsRequest

// LedgerEntryResponse is one row of the append-only cash ledger.
type LedgerEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Reason    string          `json:"reason" example:"sale"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
} // @name LedgerEntryResponse

// ListLedgerResponse is a page of ledger entries, newest first.
type ListLedgerResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
} // @name ListLedgerResponse

// CapitalHandler handles the /api/capital endpoints.
type CapitalHandler struct {
	svc *appsvcs.Services
}

// NewCapitalHandler returns a CapitalHandler backed by the given services.
func NewCapitalHandler(svc *appsvcs.Services) *CapitalHandler {
	return &CapitalHandler{svc: svc}
}

// Get returns the org's capital account, creating it on first access.
//
//	@Summary		Get capital account
//	@Tags			capital
//	@Produce		json
//	@Success		200	{object}	CapitalResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/capital [get]
func (h *CapitalHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	acct, err := h.svc.Inventory.GetCapital(r.Context(), orgID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newCapitalResponse(acct))
}

// AdjustInvestments sets the partner investment balances.
//
//	@Summary		Adjust partner investments
//	@Tags			capital
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AdjustInvestmentsRequest	true	"Investment balances"
//	@Success		200		{object}	CapitalResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/capital [patch]
func (h *CapitalHandler) AdjustInvestments(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[AdjustInvestmentsRequest](w, r)
	if !ok {
		return
	}

	acct, err := h.svc.Inventory.AdjustInvestments(r.Context(), orgID, req.PartnerAInvestment, req.PartnerBInvestment)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newCapitalResponse(acct))
}

// Ledger returns a page of the org's ledger entries, newest first.
//
//	@Summary		List ledger entries
//	@Tags			capital
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	ListLedgerResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/capital/ledger [get]
func (h *CapitalHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	opts := parseQueryOpts(r)
	entries, total, err := h.svc.Inventory.ListLedger(r.Context(), orgID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ListLedgerResponse{
		Entries: newLedgerEntryResponses(entries),
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// Reconcile cross-checks cash-on-hand against the sum of ledger entries.
//
//	@Summary		Reconcile ledger
//	@Tags			capital
//	@Produce		json
//	@Success		200	{object}	models.LedgerReconciliation
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/capital/reconcile [post]
func (h *CapitalHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	rec, err := h.svc.Inventory.ReconcileLedger(r.Context(), orgID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, rec)
}

func newLedgerEntryResponses(entries []*models.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:        e.ID,
			ItemID:    e.ItemID,
			Reason:    string(e.Reason),
			Amount:    e.Amount,
			Balance:   e.Balance,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
