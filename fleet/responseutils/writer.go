// Package responseutils renders API error payloads in a single envelope
// shape so clients can handle every failure uniformly.
package responseutils

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/fleetscope/fleet-app/middleware"
)

const (
	TypeNotFound         = "not_found"
	TypeValidationFailed = "validation_failed"
	TypeConflict         = "conflict"
	TypeInternal         = "internal_error"
)

type ErrorResponse struct {
	Status        int    `json:"status"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type ResponseWriter struct{}

func NewResponseWriter() ResponseWriter {
	return ResponseWriter{}
}

func (rw ResponseWriter) Exception(w http.ResponseWriter, r *http.Request, statusCode int, errType, errMsg string) {
	body := ErrorResponse{
		Status:  statusCode,
		Type:    errType,
		Message: errMsg,
	}
	if txID, ok := r.Context().Value(middleware.CtxTransactionKey).(string); ok {
		body.TransactionID = txID
	}

	render.Status(r, statusCode)
	render.JSON(w, r, body)
}

func (rw ResponseWriter) NotFound(w http.ResponseWriter, r *http.Request, errMsg string) {
	rw.Exception(w, r, http.StatusNotFound, TypeNotFound, errMsg)
}
