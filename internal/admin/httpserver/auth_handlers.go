package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	custommw "ateliernour.dz/shop/internal/admin/httpserver/middleware"
	"ateliernour.dz/shop/internal/admin/httpserver/ui"
	appsession "ateliernour.dz/shop/internal/admin/session"
	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/observability"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess.Authenticated() {
		http.Redirect(w, r, s.redirectTarget(r.URL.Query().Get("next")), http.StatusFound)
		return
	}

	data := s.loginPageData(r, "", "")
	s.render(w, r, "login", http.StatusOK, data)
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := s.loginPageData(r, "", "Formulaire invalide, veuillez réessayer.")
		s.render(w, r, "login", http.StatusBadRequest, data)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") == "on"
	next := r.PostFormValue("next")

	if username == "" || password == "" {
		data := s.loginPageData(r, username, "Identifiant et mot de passe requis.")
		s.render(w, r, "login", http.StatusBadRequest, data)
		return
	}

	result, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		status := http.StatusBadGateway
		message := "Le serveur est injoignable, réessayez plus tard."
		if errors.Is(err, api.ErrUnauthorized) {
			status = http.StatusUnauthorized
			message = "Identifiant ou mot de passe incorrect."
		}
		observability.FromContext(r.Context()).Warn("admin login failed",
			zap.String("username", username), zap.Error(err))
		data := s.loginPageData(r, username, message)
		s.render(w, r, "login", status, data)
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		user := result.User
		if user == nil {
			user = &api.User{Username: username}
		}
		sess.SetUser(&appsession.User{Username: user.Username, Role: user.Role})
		sess.SetAPIToken(result.Token)
		sess.SetRememberMe(remember)
	}

	target := s.redirectTarget(next)
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.Destroy()
	}
	http.Redirect(w, r, s.loginPath, http.StatusSeeOther)
}

// handleCredentialsUpdate changes the backend account and forces a re-login.
func (s *Server) handleCredentialsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds := api.Credentials{
		Username:    strings.TrimSpace(r.PostFormValue("username")),
		CurrentPass: r.PostFormValue("current_password"),
		NewPass:     r.PostFormValue("new_password"),
	}

	data := s.settingsPageData(r, creds.Username)
	if creds.Username == "" || creds.CurrentPass == "" || creds.NewPass == "" {
		data.Error = "Tous les champs sont obligatoires."
		s.render(w, r, "settings", http.StatusUnprocessableEntity, data)
		return
	}
	if len(creds.NewPass) < 6 {
		data.Error = "Le nouveau mot de passe doit faire au moins 6 caractères."
		s.render(w, r, "settings", http.StatusUnprocessableEntity, data)
		return
	}

	token := custommw.TokenFromContext(r.Context())
	if err := s.api.UpdateCredentials(r.Context(), token, creds); err != nil {
		var apiErr *api.Error
		if errors.Is(err, api.ErrUnauthorized) || (errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest) {
			data.Error = "Mot de passe actuel incorrect."
			s.render(w, r, "settings", http.StatusUnprocessableEntity, data)
			return
		}
		observability.FromContext(r.Context()).Error("update credentials", zap.Error(err))
		data.Error = "La mise à jour a échoué, réessayez plus tard."
		s.render(w, r, "settings", http.StatusBadGateway, data)
		return
	}

	// the old token is now stale, ask for a fresh login
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.Destroy()
	}
	http.Redirect(w, r, s.loginPath+"?changed=1", http.StatusSeeOther)
}

func (s *Server) loginPageData(r *http.Request, username, errMsg string) *ui.PageData {
	data := &ui.PageData{
		Title:     "Connexion",
		BasePath:  s.basePath,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		Error:     errMsg,
		Login: &ui.LoginView{
			Username: username,
			Next:     r.URL.Query().Get("next"),
			Changed:  r.URL.Query().Get("changed") == "1",
		},
	}
	return data
}

func (s *Server) settingsPageData(r *http.Request, username string) *ui.PageData {
	user, _ := custommw.UserFromContext(r.Context())
	if username == "" && user != nil {
		username = user.Username
	}
	return &ui.PageData{
		Title:     "Paramètres",
		BasePath:  s.basePath,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		User:      user,
		Settings:  &ui.SettingsView{Username: username},
	}
}

func (s *Server) redirectTarget(next string) string {
	next = strings.TrimSpace(next)
	// only same-site relative targets, anything else falls back to the dashboard
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return s.basePath
	}
	return next
}
