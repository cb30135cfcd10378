package middleware

import (
	"net/http"

	pnet "warden/internal/platform/net"
)

// OwnerPort resolves the acting owner for a request, typically from a header or token
type OwnerPort interface {
	// Parse returns an owner id from the request or an error
	Parse(r *http.Request) (ownerID string, err error)
}

// Owner is a no-op until wired. It uses the port when provided
func Owner(p OwnerPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			oid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()), oid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
