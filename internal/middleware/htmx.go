package middleware

import (
	"net/http"
)

// HTMX flags requests issued by the htmx client so handlers can answer with a
// page fragment instead of a full document. Plain requests pass through with
// the flag unset.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HX-Request") != "true" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), true)))
	})
}
