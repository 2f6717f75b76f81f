package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// maxUploadMemory bounds in-memory parsing of multipart bodies (image uploads).
const maxUploadMemory = 32 << 20

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf.token"

const csrfHeaderName = "X-CSRF-Token"

// CSRF ties form submissions to the session token. Safe methods ensure a token
// exists; unsafe methods require the csrf_token form field or the X-CSRF-Token
// header to match.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "session required", http.StatusInternalServerError)
				return
			}

			token, err := sess.EnsureCSRFToken()
			if err != nil {
				http.Error(w, "csrf token error", http.StatusInternalServerError)
				return
			}

			if isUnsafeMethod(r.Method) {
				submitted := r.Header.Get(csrfHeaderName)
				if submitted == "" {
					if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
						_ = r.ParseMultipartForm(maxUploadMemory)
					}
					submitted = r.FormValue("csrf_token")
				}
				if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFTokenFromContext returns the token issued for the current request, for
// embedding in forms.
func CSRFTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(csrfTokenContextKey).(string); ok {
		return token
	}
	return ""
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
