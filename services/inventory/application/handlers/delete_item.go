package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// DeleteItemHandler handles DELETE /api/items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute deletes an item. Deletion never touches cash-on-hand, whatever the
// item's funding or status was.
//
//	@Summary		Delete item
//	@Tags			items
//	@Produce		json
//	@Param			id	path	string	true	"Item ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Inventory.Delete(r.Context(), orgID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
