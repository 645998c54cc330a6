package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/web/templates"
)

type loadResponse struct {
	Message            string    `json:"message"`
	Source             string    `json:"source"`
	Rows               int       `json:"rows"`
	Columns            int       `json:"columns"`
	InvalidIdentifiers int       `json:"invalid_identifiers"`
	Bytes              int64     `json:"bytes"`
	LoadedAt           time.Time `json:"loaded_at"`
	Seconds            int       `json:"seconds"`
}

func newLoadResponse(r core.LoadReport) loadResponse {
	return loadResponse{
		Message:            templates.LoadSuccessMessage(r),
		Source:             r.Source,
		Rows:               r.Rows,
		Columns:            r.Columns,
		InvalidIdentifiers: r.InvalidIdentifiers,
		Bytes:              r.Bytes,
		LoadedAt:           r.LoadedAt,
		Seconds:            r.Seconds(),
	}
}

type sessionResponse struct {
	SessionID string                 `json:"session_id"`
	CreatedAt time.Time              `json:"created_at"`
	Loaded    bool                   `json:"loaded"`
	LastLoad  *loadResponse          `json:"last_load,omitempty"`
	Loads     core.LoadLimiterStatus `json:"loads"`
}

type searchResponse struct {
	Mode        core.SearchMode `json:"mode"`
	Query       string          `json:"query"`
	FormattedID string          `json:"formatted_id,omitempty"`
	Performed   bool            `json:"performed"`
	Count       int             `json:"count"`
	Columns     []string        `json:"columns"`
	Rows        [][]string      `json:"rows"`
}

type summaryResponse struct {
	Total        int `json:"total"`
	Male         int `json:"male"`
	Female       int `json:"female"`
	Unrecognized int `json:"unrecognized"`
}

type categoryResponse struct {
	Label   string          `json:"label"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

type chartResponse struct {
	Dimension  core.Dimension     `json:"dimension"`
	Title      string             `json:"title"`
	Hole       bool               `json:"hole"`
	Categories []categoryResponse `json:"categories"`
}

// handleHealth reports liveness with session and load counts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.Sessions().Len(),
		"loads":    s.service.LoadStatus(),
	})
}

// handleAPISession describes the caller's session.
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	resp := sessionResponse{
		SessionID: sess.ID.String(),
		CreatedAt: sess.CreatedAt,
		Loads:     s.service.LoadStatus(),
	}
	if report, loaded := sess.LastLoad(); loaded {
		lr := newLoadResponse(report)
		resp.Loaded = true
		resp.LastLoad = &lr
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAPIEndSession drops the caller's session and its table, and
// expires the cookie.
func (s *Server) handleAPIEndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	s.service.EndSession(r.Context(), sess)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleAPILoad loads the dataset into the caller's session.
func (s *Server) handleAPILoad(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	report, err := s.service.Load(context.WithoutCancel(r.Context()), sess)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, newLoadResponse(report))
}

// handleAPISearch searches the caller's table. Unlike the page, an empty
// identifier query is reported as invalid.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	mode, err := parseMode(q.Get("mode"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.Search(r.Context(), sess, mode, q.Get("q"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	rows := make([][]string, len(res.Rows))
	for i, rec := range res.Rows {
		rows[i] = rec.Values
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Mode:        res.Mode,
		Query:       res.Query,
		FormattedID: res.ID.Formatted(),
		Performed:   res.Performed,
		Count:       res.Count,
		Columns:     res.Columns,
		Rows:        rows,
	})
}

// handleAPISummary returns the headline counts.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sum, err := s.service.Summary(r.Context(), sess)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:        sum.Total,
		Male:         sum.Male,
		Female:       sum.Female,
		Unrecognized: sum.Unrecognized,
	})
}

// handleAPIChart returns the category counts behind a proportion chart.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	dim, err := core.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	counts, err := s.service.Chart(r.Context(), sess, dim)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	cats := make([]categoryResponse, len(counts))
	for i, c := range counts {
		cats[i] = categoryResponse{Label: c.Label, Count: c.Count, Percent: c.Percent}
	}
	writeJSON(w, http.StatusOK, chartResponse{
		Dimension:  dim,
		Title:      dim.Title(),
		Hole:       dim.Hole(),
		Categories: cats,
	})
}
