package handlers

import (
	"net/http"

	"github.com/ghuser/closetline/pkg/auth"
	"github.com/ghuser/closetline/pkg/errhttp"
	"github.com/ghuser/closetline/pkg/httpx"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// SummaryHandler handles GET /api/summary requests.
type SummaryHandler struct {
	svc *appsvcs.Services
}

// NewSummaryHandler returns a SummaryHandler backed by the given services.
func NewSummaryHandler(svc *appsvcs.Services) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Execute returns the org's financial summary, derived from the full item set.
//
//	@Summary		Financial summary
//	@Description	Derived totals over the whole item set: spend, revenue, profit, scams, margin
//	@Tags			summary
//	@Produce		json
//	@Success		200	{object}	models.FinancialSummary
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/summary [get]
func (h *SummaryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	summary, err := h.svc.Inventory.GetFinancialSummary(r.Context(), orgID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, summary)
}
