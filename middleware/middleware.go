package middleware

import (
	"context"
	"net/http"

	"github.com/pborman/uuid"
)

// type to create context.Context key
type CtxTransactionKeyType string

// context.Context key to get the transaction ID from the request context
const CtxTransactionKey CtxTransactionKeyType = "ctxTransaction"

// Adds a transaction ID to the request context
func NewTransactionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(context.WithValue(r.Context(), CtxTransactionKey, uuid.New()))
		next.ServeHTTP(w, r)
	})
}

// type to create context.Context key
type CtxOrganizationKeyType string

// context.Context key holding the tenant organization the request is scoped to
const CtxOrganizationKey CtxOrganizationKeyType = "ctxOrganization"

// OrganizationFromContext returns the organization ID set by RequireOrganization,
// or nil when the request was not scoped.
func OrganizationFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(CtxOrganizationKey).(uuid.UUID); ok {
		return id
	}
	return nil
}

// RequireOrganization resolves the organization from the X-Organization-ID
// header and rejects requests without a well-formed one. Every tenant-scoped
// route sits behind this.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.Parse(r.Header.Get("X-Organization-ID"))
		if id == nil {
			http.Error(w, "missing or malformed X-Organization-ID header", http.StatusBadRequest)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), CtxOrganizationKey, id))
		next.ServeHTTP(w, r)
	})
}
