package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	pkgvalidator "github.com/ghuser/closetline/pkg/validator"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// ConventionTagRequest is the request body for PUT /api/items/{id}/convention.
type ConventionTagRequest struct {
	Active *bool `json:"active" validate:"required" example:"true"`
} // @name ConventionTagRequest

// SweepRequest is the request body for POST /api/convention/sweep. An absent
// event_end means each item's tag time stands in for the event end.
type SweepRequest struct {
	EventEnd *time.Time `json:"event_end"`
} // @name SweepRequest

// SweepResponse reports the items released by a sweep run.
type SweepResponse struct {
	Released []ItemResponse `json:"released"`
	Count    int            `json:"count"`
} // @name SweepResponse

// ConventionHandler handles convention tagging and the auto-release sweep.
type ConventionHandler struct {
	svc *appsvcs.Services
}

// NewConventionHandler returns a ConventionHandler backed by the given services.
func NewConventionHandler(svc *appsvcs.Services) *ConventionHandler {
	return &ConventionHandler{svc: svc}
}

// Tag sets an item's active-in-convention flag. Activating also sets the
// permanent ever-in-convention marker; deactivating never clears it.
//
//	@Summary		Tag or untag item for a convention
//	@Tags			convention
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Item ID"
//	@Param			request	body		ConventionTagRequest	true	"Tag state"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/items/{id}/convention [put]
func (h *ConventionHandler) Tag(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[ConventionTagRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.ToggleConvention(r.Context(), orgID, id, *req.Active)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, newItemResponse(item))
}

// Sweep releases the org's convention items whose event ended more than the
// grace period ago. Safe to re-run.
//
//	@Summary		Run convention auto-release sweep
//	@Tags			convention
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SweepRequest	true	"Sweep parameters"
//	@Success		200		{object}	SweepResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/convention/sweep [post]
func (h *ConventionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	// The body is optional: a bare POST runs the sweep with per-item tag
	// times as the event end.
	var req SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
		return
	}

	var eventEnd time.Time
	if req.EventEnd != nil {
		eventEnd = *req.EventEnd
	}

	released, err := h.svc.Inventory.RunConventionSweep(r.Context(), orgID, eventEnd)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, SweepResponse{
		Released: newItemResponses(released),
		Count:    len(released),
	})
}
