package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	pkgvalidator "github.com/ghuser/closetline/pkg/validator"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// MarkTradedRequest is the request body for POST /api/items/{id}/traded.
// cash_difference is signed: positive means cash was paid out on top of the
// trade, negative means cash was received.
type MarkTradedRequest struct {
	TradedForItemID *uuid.UUID      `json:"traded_for_item_id"`
	CashDifference  decimal.Decimal `json:"cash_difference" swaggertype:"number" example:"-20.00"`
} // @name MarkTradedRequest

// MarkTradedHandler handles POST /api/items/{id}/traded requests.
type MarkTradedHandler struct {
	svc *appsvcs.Services
}

// NewMarkTradedHandler returns a MarkTradedHandler backed by the given services.
func NewMarkTradedHandler(svc *appsvcs.Services) *MarkTradedHandler {
	return &MarkTradedHandler{svc: svc}
}

// Execute marks an item traded and applies the signed cash difference to
// cash-on-hand. A zero difference writes no ledger entry.
//
//	@Summary		Mark item traded
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item ID"
//	@Param			request	body		MarkTradedRequest	true	"Trade details"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/items/{id}/traded [post]
func (h *MarkTradedHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[MarkTradedRequest](w, r)
	if !ok {
		return
	}

	tradedFor := uuid.Nil
	if req.TradedForItemID != nil {
		tradedFor = *req.TradedForItemID
	}

	item, err := h.svc.Inventory.MarkTraded(r.Context(), orgID, id, tradedFor, req.CashDifference)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newItemResponse(item))
}
