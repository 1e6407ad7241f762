package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/closetline/pkg/app"
	"github.com/ghuser/closetline/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
)

// InventoryRoutes registers the inventory endpoints on the provided chi
// router. The caller mounts this under /api behind the auth middleware.
func InventoryRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)

	items := handlers.NewGetItemsHandler(svcs)
	convention := handlers.NewConventionHandler(svcs)
	capital := handlers.NewCapitalHandler(svcs)

	r.Group(func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
			r.Get("/", items.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", items.Get)
				r.Patch("/", handlers.NewPatchItemHandler(svcs).Execute)
				r.Delete("/", handlers.NewDeleteItemHandler(svcs).Execute)
				r.Post("/sold", handlers.NewMarkSoldHandler(svcs).Execute)
				r.Post("/traded", handlers.NewMarkTradedHandler(svcs).Execute)
				r.Put("/convention", convention.Tag)
			})
		})

		r.Get("/summary", handlers.NewSummaryHandler(svcs).Execute)
		r.Post("/convention/sweep", convention.Sweep)

		r.Route("/capital", func(r chi.Router) {
			r.Get("/", capital.Get)
			r.Patch("/", capital.AdjustInvestments)
			r.Get("/ledger", capital.Ledger)
			r.Post("/reconcile", capital.Reconcile)
		})
	})
}
