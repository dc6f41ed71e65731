// Package requesttime pins "now" once per request so every timestamp written
// while serving it (eligibility checks, created_at, audit) agrees.
package requesttime

import (
	"net/http"
	"time"

	"lifeline/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
