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
	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// UpdateItemRequest is the request body for PATCH /api/items/{id}.
// Absent fields are left unchanged. paid_by is not updatable: the funding
// source is fixed at acquisition because the ledger already recorded it.
type UpdateItemRequest struct {
	Name                  *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Brand                 *string          `json:"brand" validate:"omitempty,max=255"`
	Category              *string          `json:"category" validate:"omitempty,max=255"`
	Size                  *string          `json:"size" validate:"omitempty,max=64"`
	AcquisitionCost       *decimal.Decimal `json:"acquisition_cost" swaggertype:"number"`
	AskingPrice           *decimal.Decimal `json:"asking_price" swaggertype:"number"`
	LowestAcceptablePrice *decimal.Decimal `json:"lowest_acceptable_price" swaggertype:"number"`
	GoalPrice             *decimal.Decimal `json:"goal_price" swaggertype:"number"`
	SalePrice             *decimal.Decimal `json:"sale_price" swaggertype:"number"`
	Status                *string          `json:"status" validate:"omitempty,oneof=in-closet listed for-sale otw sold traded scammed refunded archive-hold"`
	DateSold              *time.Time       `json:"date_sold"`
} // @name UpdateItemRequest

// PatchItemHandler handles PATCH /api/items/{id} requests.
type PatchItemHandler struct {
	svc *appsvcs.Services
}

// NewPatchItemHandler returns a PatchItemHandler backed by the given services.
func NewPatchItemHandler(svc *appsvcs.Services) *PatchItemHandler {
	return &PatchItemHandler{svc: svc}
}

// Execute applies a partial update to an item. A status change is run through
// the transition policy, so a refund restores cost and a direct status=sold
// patch credits the sale price.
//
//	@Summary		Update item
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item ID"
//	@Param			request	body		UpdateItemRequest	true	"Partial item update"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/items/{id} [patch]
func (h *PatchItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	params := appsvcs.UpdateItemParams{
		Name:                  req.Name,
		Brand:                 req.Brand,
		Category:              req.Category,
		Size:                  req.Size,
		AcquisitionCost:       req.AcquisitionCost,
		AskingPrice:           req.AskingPrice,
		LowestAcceptablePrice: req.LowestAcceptablePrice,
		GoalPrice:             req.GoalPrice,
		SalePrice:             req.SalePrice,
		DateSold:              req.DateSold,
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		params.Status = &status
	}

	item, err := h.svc.Inventory.UpdateItem(r.Context(), orgID, id, params)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newItemResponse(item))
}
