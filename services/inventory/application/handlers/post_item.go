package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	pkgvalidator "github.com/ghuser/closetline/pkg/validator"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// CreateItemRequest is the request body for POST /api/items.
// Money fields accept JSON numbers or numeric strings; omitted optional
// prices default to 0 (unset).
type CreateItemRequest struct {
	Name                  string          `json:"name" validate:"required,min=1,max=255" example:"Vintage band tee"`
	Brand                 string          `json:"brand" validate:"max=255"`
	Category              string          `json:"category" validate:"max=255"`
	Size                  string          `json:"size" validate:"max=64"`
	AcquisitionCost       decimal.Decimal `json:"acquisition_cost" swaggertype:"number"`
	AskingPrice           decimal.Decimal `json:"asking_price" swaggertype:"number"`
	LowestAcceptablePrice decimal.Decimal `json:"lowest_acceptable_price" swaggertype:"number"`
	GoalPrice             decimal.Decimal `json:"goal_price" swaggertype:"number"`
	Status                string          `json:"status" validate:"omitempty,oneof=in-closet listed for-sale otw archive-hold" example:"in-closet"`
	PaidBy                string          `json:"paid_by" validate:"required,oneof=shared partner-a partner-b" example:"shared"`
	DateAdded             *time.Time      `json:"date_added"`
} // @name CreateItemRequest

// PostItemHandler handles POST /api/items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute records a newly acquired item.
//
//	@Summary		Create item
//	@Description	Records a newly acquired item; a shared-paid acquisition deducts its cost from cash-on-hand
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	params := models.NewItemParams{
		Name:                  req.Name,
		Brand:                 req.Brand,
		Category:              req.Category,
		Size:                  req.Size,
		AcquisitionCost:       req.AcquisitionCost,
		AskingPrice:           req.AskingPrice,
		LowestAcceptablePrice: req.LowestAcceptablePrice,
		GoalPrice:             req.GoalPrice,
		Status:                models.Status(req.Status),
		PaidBy:                models.PaidBy(req.PaidBy),
	}
	if req.DateAdded != nil {
		params.DateAdded = *req.DateAdded
	}

	item, err := h.svc.Inventory.CreateItem(r.Context(), orgID, params)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, newItemResponse(item))
}
