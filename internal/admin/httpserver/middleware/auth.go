package middleware

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

type authContextKey string

const (
	userContextKey  authContextKey = "auth.user"
	tokenContextKey authContextKey = "auth.token"
)

// Auth gates the back-office behind a logged-in session. The stored API token
// is re-verified against the backend on every request; a rejected token
// destroys the session and sends the visitor back to the login form.
func Auth(svc api.Service, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.Authenticated() {
				handleUnauthorized(w, r, loginPath)
				return
			}

			token := sess.APIToken()
			user, err := svc.Verify(r.Context(), token)
			if err != nil || user == nil {
				observability.FromContext(r.Context()).Info("admin token rejected",
					zap.Error(err))
				sess.Destroy()
				handleUnauthorized(w, r, loginPath)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the verified account if present.
func UserFromContext(ctx context.Context) (*api.User, bool) {
	user, ok := ctx.Value(userContextKey).(*api.User)
	return user, ok
}

// TokenFromContext returns the backend bearer token for the current request.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	target := loginPath
	if next := r.URL.RequestURI(); next != "" && next != loginPath {
		if u, err := url.Parse(loginPath); err == nil {
			q := u.Query()
			q.Set("next", next)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}
