package middleware

import (
	"fmt"
	"html/template"
	"net/http"
)

// writeError reports a request failure. htmx swaps whatever comes back into
// the page, so it gets a small alert fragment; everything else gets the plain
// text error.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		fmt.Fprintf(w, `<p class="form-error" role="alert">%s</p>`, template.HTMLEscapeString(msg))
		return
	}
	http.Error(w, msg, code)
}
