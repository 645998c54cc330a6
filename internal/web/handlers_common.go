package web

// handlers_common.go holds helpers shared by the page and API handlers.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/web/templates"
)

var errNoSession = errors.New("no session in request context")

// session returns the visitor's session attached by the session middleware.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, ok := core.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, errNoSession, http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// renderPage writes body with the given status. HTMX requests get the body
// alone; everything else gets the full layout.
func renderPage(w http.ResponseWriter, r *http.Request, status int, title, nav string, body templ.Component) {
	page := body
	if !isHTMX(r) {
		page = templates.Layout(title, nav, body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		logError(r, err, http.StatusInternalServerError)
	}
}

// parseMode reads the search mode; an empty value selects full name search.
func parseMode(v string) (core.SearchMode, error) {
	if strings.TrimSpace(v) == "" {
		return core.ModeFullName, nil
	}
	return core.ParseSearchMode(v)
}

// parseDimension reads the chart dimension; an empty value selects gender.
func parseDimension(v string) (core.Dimension, error) {
	if strings.TrimSpace(v) == "" {
		return core.DimensionGender, nil
	}
	return core.ParseDimension(v)
}
