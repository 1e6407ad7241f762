package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ListItemsResponse is a page of items plus the org's total count.
type ListItemsResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
} // @name ListItemsResponse

// GetItemsHandler handles GET /api/items and GET /api/items/{id}.
type GetItemsHandler struct {
	svc *appsvcs.Services
}

// NewGetItemsHandler returns a GetItemsHandler backed by the given services.
func NewGetItemsHandler(svc *appsvcs.Services) *GetItemsHandler {
	return &GetItemsHandler{svc: svc}
}

// List returns a page of the org's items.
//
//	@Summary		List items
//	@Tags			items
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	ListItemsResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/items [get]
func (h *GetItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	opts := parseQueryOpts(r)
	items, total, err := h.svc.Inventory.List(r.Context(), orgID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ListItemsResponse{
		Items:  newItemResponses(items),
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// Get returns a single item by ID.
//
//	@Summary		Get item
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"
//	@Success		200	{object}	ItemResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/items/{id} [get]
func (h *GetItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.svc.Inventory.GetByID(r.Context(), orgID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newItemResponse(item))
}

func parseQueryOpts(r *http.Request) repositories.QueryOpts {
	opts := repositories.QueryOpts{Limit: defaultPageLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = min(n, maxPageLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	return opts
}
