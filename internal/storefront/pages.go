package storefront

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/cms"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
)

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	page, err := s.content.Get("a-propos", custommw.Lang(r))
	if errors.Is(err, cms.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("load content", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := s.newPageData(r, "about.title")
	data.Title = page.Title
	data.Content = page
	s.render(w, r, "content", data)
}
