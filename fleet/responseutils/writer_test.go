package responseutils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetscope/fleet-app/middleware"
)

func TestException(t *testing.T) {
	rw := NewResponseWriter()

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.CtxTransactionKey, "tx-123"))
	rr := httptest.NewRecorder()

	rw.Exception(rr, req, http.StatusBadRequest, TypeValidationFailed, "mpg out of range")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, TypeValidationFailed, body.Type)
	assert.Equal(t, "mpg out of range", body.Message)
	assert.Equal(t, "tx-123", body.TransactionID)
}

func TestNotFound(t *testing.T) {
	rw := NewResponseWriter()

	rr := httptest.NewRecorder()
	rw.NotFound(rr, httptest.NewRequest("GET", "/", nil), "no report found")

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body.Type)
	assert.Empty(t, body.TransactionID)
}
