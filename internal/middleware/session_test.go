package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ateliernour.dz/shop/internal/persist"
)

func TestSessionRoundTrip(t *testing.T) {
	var firstID string
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		firstID = s.ID
		require.NoError(t, s.KV().Set("cart", []byte(`[{"key":"p1-Unique"}]`)))
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, firstID)

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie must be set")

	// Second request carrying the cookie sees the same session and stored value.
	h2 := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		require.Equal(t, firstID, s.ID)
		raw, err := s.KV().Get("cart")
		require.NoError(t, err)
		require.Contains(t, string(raw), "p1-Unique")
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	h2.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSessionTamperedCookie(t *testing.T) {
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		_, err := s.KV().Get("cart")
		require.ErrorIs(t, err, persist.ErrNotFound)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus.payload"})
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSessionKVDelete(t *testing.T) {
	s := &SessionData{}
	kv := s.KV()
	require.NoError(t, kv.Set("pending_order", []byte(`{}`)))
	require.NoError(t, kv.Delete("pending_order"))
	_, err := kv.Get("pending_order")
	require.ErrorIs(t, err, persist.ErrNotFound)
	// deleting an absent key is not an error
	require.NoError(t, kv.Delete("pending_order"))
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	h := Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	form := url.Values{"quantity": {"2"}}
	req := httptest.NewRequest(http.MethodPost, "/cart/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsFormToken(t *testing.T) {
	// First GET to learn the token.
	var token string
	learn := Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = GetSession(r).CSRFToken
		w.WriteHeader(http.StatusOK)
	})))
	rec := httptest.NewRecorder()
	learn.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, token)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	h := Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	form := url.Values{"csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/cart/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessionCookie)
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusNoContent, rec2.Code)
}

func TestHTMXFlag(t *testing.T) {
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, IsHTMX(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
}
