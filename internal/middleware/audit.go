package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/audit"
)

// AuditMiddleware records admin mutations in the audit log.
type AuditMiddleware struct {
	audits *audit.Service
}

func NewAuditMiddleware(audits *audit.Service) *AuditMiddleware {
	return &AuditMiddleware{audits: audits}
}

// Record writes an audit entry for every unsafe request passing through it.
// Mount it on the admin subrouter only; reads are not audited.
func (m *AuditMiddleware) Record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserIDFromContext(r.Context()); ok {
			userID = &id
		}
		requestID, _ := RequestIDFromContext(r.Context())

		entry := &audit.Entry{
			UserID:     userID,
			Action:     r.Method + " " + r.URL.Path,
			EntityType: "http_request",
			IPAddress:  r.RemoteAddr,
			UserAgent:  r.UserAgent(),
			RequestID:  requestID,
			StatusCode: wrapped.statusCode,
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			m.audits.Record(ctx, entry)
		}()
	})
}
