package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	appsession "ateliernour.dz/shop/internal/admin/session"
	webmw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and persists
// changes back as a cookie just before the first response byte goes out, while
// headers are still open.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				logger.Info("admin session expired, resetting")
				store.Destroy(w)
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					logger.Warn("admin session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			rec := webmw.NewResponseRecorder(w)
			rec.SetBeforeWrite(func(inner http.ResponseWriter) {
				if err := store.Save(inner, sess); err != nil {
					logger.Error("admin session save failed", zap.Error(err))
				}
			})

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if !rec.Wrote() {
				if err := store.Save(w, sess); err != nil {
					logger.Error("admin session save failed", zap.Error(err))
				}
			}
		})
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
