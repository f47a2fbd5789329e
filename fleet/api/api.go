package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	customErrors "github.com/fleetscope/fleet-app/fleet/errors"
	"github.com/fleetscope/fleet-app/fleet/health"
	"github.com/fleetscope/fleet-app/fleet/ifta"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/repository"
	"github.com/fleetscope/fleet-app/fleet/responseutils"
	"github.com/fleetscope/fleet-app/fleet/service"
	"github.com/fleetscope/fleet-app/log"
	"github.com/fleetscope/fleet-app/middleware"
)

type API struct {
	svc     service.Service
	checker health.Checker
	rw      responseutils.ResponseWriter
}

func NewAPI(svc service.Service, checker health.Checker) *API {
	return &API{svc: svc, checker: checker, rw: responseutils.NewResponseWriter()}
}

func (a *API) ComplianceSummary(w http.ResponseWriter, r *http.Request) {
	now, err := asOf(r)
	if err != nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, err.Error())
		return
	}

	metrics, err := a.svc.GetComplianceSummary(r.Context(), middleware.OrganizationFromContext(r.Context()), now)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, metrics)
}

func (a *API) UpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	now, err := asOf(r)
	if err != nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, err.Error())
		return
	}

	items, err := a.svc.GetUpcomingDeadlines(r.Context(), middleware.OrganizationFromContext(r.Context()), now)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.DeadlineItem{}
	}

	render.JSON(w, r, items)
}

func (a *API) DriverHOSStatus(w http.ResponseWriter, r *http.Request) {
	driverID := uuid.Parse(chi.URLParam(r, "driverID"))
	if driverID == nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed driver id")
		return
	}
	now, err := asOf(r)
	if err != nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, err.Error())
		return
	}

	result, err := a.svc.GetDriverHOSStatus(r.Context(), driverID, now)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

type reportOverviewResponse struct {
	Report  *models.IFTAReport   `json:"report"`
	Summary models.ReportSummary `json:"summary"`
}

func (a *API) IFTAReportOverview(w http.ResponseWriter, r *http.Request) {
	reportID := uuid.Parse(chi.URLParam(r, "reportID"))
	if reportID == nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed report id")
		return
	}

	report, summary, err := a.svc.GetIFTAReportOverview(r.Context(), reportID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, reportOverviewResponse{Report: report, Summary: summary})
}

func (a *API) ValidateJurisdiction(w http.ResponseWriter, r *http.Request) {
	reportID := uuid.Parse(chi.URLParam(r, "reportID"))
	if reportID == nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed report id")
		return
	}

	result, err := a.svc.ValidateJurisdiction(r.Context(), reportID, chi.URLParam(r, "jurisdiction"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

type adjustmentRequest struct {
	Adjustments decimal.Decimal `json:"adjustments"`
	TaxCredits  decimal.Decimal `json:"tax_credits"`
}

func (a *API) ApplyAdjustment(w http.ResponseWriter, r *http.Request) {
	reportID := uuid.Parse(chi.URLParam(r, "reportID"))
	if reportID == nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed report id")
		return
	}

	var req adjustmentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed request body")
		return
	}

	calc, err := a.svc.ApplyAdjustment(r.Context(), reportID, chi.URLParam(r, "jurisdiction"),
		req.Adjustments, req.TaxCredits)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, calc)
}

func (a *API) SubmitIFTAReport(w http.ResponseWriter, r *http.Request) {
	reportID := uuid.Parse(chi.URLParam(r, "reportID"))
	if reportID == nil {
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, "malformed report id")
		return
	}

	if err := a.svc.SubmitIFTAReport(r.Context(), reportID); err != nil {
		a.writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"status": "Submitted"})
}

func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	m := make(map[string]string)
	dbStatus, ok := a.checker.IsDatabaseOK()
	m["database"] = dbStatus
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
	}
	render.JSON(w, r, m)
}

// writeError maps service and domain failures onto the response envelope.
// Unrecognized errors are logged and reported as opaque 500s.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *customErrors.EntityValidationError

	switch {
	case errors.Is(err, repository.ErrReportNotFound):
		a.rw.NotFound(w, r, err.Error())
	case errors.Is(err, ifta.ErrReportNotDraft),
		errors.Is(err, ifta.ErrUnvalidatedJurisdictions),
		errors.Is(err, ifta.ErrNoJurisdictions):
		a.rw.Exception(w, r, http.StatusConflict, responseutils.TypeConflict, err.Error())
	case errors.As(err, &validationErr):
		a.rw.Exception(w, r, http.StatusBadRequest, responseutils.TypeValidationFailed, err.Error())
	default:
		log.API.WithField("uri", r.RequestURI).Error(err)
		a.rw.Exception(w, r, http.StatusInternalServerError, responseutils.TypeInternal, "internal server error")
	}
}

// asOf reads the optional RFC 3339 as_of query parameter; absent means the
// current time.
func asOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("as_of must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}
