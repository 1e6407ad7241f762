package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	pkgvalidator "github.com/ghuser/closetline/pkg/validator"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// MarkSoldRequest is the request body for POST /api/items/{id}/sold.
type MarkSoldRequest struct {
	SalePrice decimal.Decimal `json:"sale_price" swaggertype:"number" example:"120.00"`
	DateSold  *time.Time      `json:"date_sold"`
} // @name MarkSoldRequest

// MarkSoldHandler handles POST /api/items/{id}/sold requests.
type MarkSoldHandler struct {
	svc *appsvcs.Services
}

// NewMarkSoldHandler returns a MarkSoldHandler backed by the given services.
func NewMarkSoldHandler(svc *appsvcs.Services) *MarkSoldHandler {
	return &MarkSoldHandler{svc: svc}
}

// Execute marks an item sold and credits the sale price to cash-on-hand.
// Reposting for an already-sold item returns 409 and changes nothing.
//
//	@Summary		Mark item sold
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item ID"
//	@Param			request	body		MarkSoldRequest	true	"Sale details"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/items/{id}/sold [post]
func (h *MarkSoldHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[MarkSoldRequest](w, r)
	if !ok {
		return
	}

	var soldAt time.Time
	if req.DateSold != nil {
		soldAt = *req.DateSold
	}

	item, err := h.svc.Inventory.MarkSold(r.Context(), orgID, id, req.SalePrice, soldAt)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newItemResponse(item))
}
