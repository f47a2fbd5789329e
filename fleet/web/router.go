package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/fleetscope/fleet-app/fleet/api"
	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/logging"
	"github.com/fleetscope/fleet-app/middleware"
)

func NewAPIRouter(a *api.API) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, middleware.NewTransactionID, logging.NewStructuredLogger(), chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOrganization)

			r.Get("/compliance/summary", a.ComplianceSummary)
			r.Get("/compliance/deadlines", a.UpcomingDeadlines)
			r.Get("/drivers/{driverID}/hos-status", a.DriverHOSStatus)

			r.Route("/ifta/reports/{reportID}", func(r chi.Router) {
				r.Get("/", a.IFTAReportOverview)
				r.Post("/submit", a.SubmitIFTAReport)
				r.Post("/jurisdictions/{jurisdiction}/validate", a.ValidateJurisdiction)
				r.Post("/jurisdictions/{jurisdiction}/adjustments", a.ApplyAdjustment)
			})
		})
	})

	r.Get("/_version", getVersion)
	r.Get("/_health", a.HealthCheck)

	return r
}

func getVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"version": constants.Version})
}
