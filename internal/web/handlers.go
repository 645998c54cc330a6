package web

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/nonfiler/internal/chart"
	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/web/templates"
)

// handleHome renders the landing page with the Load Data button.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	report, loaded := sess.LastLoad()
	renderPage(w, r, http.StatusOK, "", templates.NavHome, templates.Home(templates.HomeData{
		Loaded: loaded,
		Report: report,
	}))
}

// handleLoad downloads the dataset into the visitor's session.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	// A load runs to completion even if the visitor navigates away.
	report, err := s.service.Load(context.WithoutCancel(r.Context()), sess)
	if err != nil {
		alert, status := errorAlert(r, err)
		renderPage(w, r, status, "", templates.NavHome, templates.Home(templates.HomeData{Alert: alert}))
		return
	}

	renderPage(w, r, http.StatusOK, "", templates.NavHome, templates.Home(templates.HomeData{
		Loaded: true,
		Report: report,
		Alert:  templates.SuccessAlert(templates.LoadSuccessMessage(report)),
	}))
}

// handleSearch renders the search form and, once a query is entered, its results.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := q.Get("q")
	_, loaded := sess.Table()
	data := templates.SearchData{Mode: core.ModeFullName, Query: query, Loaded: loaded}
	status := http.StatusOK

	mode, err := parseMode(q.Get("mode"))
	switch {
	case !loaded && query == "":
		// Nothing entered yet, but there is nothing to search either.
		data.Alert, status = errorAlert(r, core.ErrNotLoaded)

	case err != nil:
		data.Alert, status = errorAlert(r, err)

	case query == "":
		data.Mode = mode

	default:
		data.Mode = mode
		res, err := s.service.Search(r.Context(), sess, mode, query)
		if err != nil {
			data.Alert, status = errorAlert(r, err)
			break
		}
		data.Result = &res
	}

	renderPage(w, r, status, "Search", templates.NavSearch, templates.Search(data))
}

// handleSummary renders the count table and the selected proportion chart.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sum, err := s.service.Summary(r.Context(), sess)
	if err != nil {
		alert, status := errorAlert(r, err)
		renderPage(w, r, status, "Summary", templates.NavSummary, templates.Summary(templates.SummaryData{Alert: alert}))
		return
	}

	data := templates.SummaryData{Summary: sum, Dimension: core.DimensionGender, Loaded: true}
	status := http.StatusOK

	dim, err := parseDimension(r.URL.Query().Get("chart"))
	if err != nil {
		data.Alert, status = errorAlert(r, err)
	} else {
		data.Dimension = dim
	}

	counts, err := s.service.Chart(r.Context(), sess, data.Dimension)
	if err != nil {
		data.Alert, status = errorAlert(r, err)
	}
	data.Counts = counts

	renderPage(w, r, status, "Summary", templates.NavSummary, templates.Summary(data))
}

// handleChartSVG renders one proportion chart as SVG.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := chart.Render(&buf, dim, counts); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleAbout renders the data provenance page.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "About", templates.NavAbout, templates.About())
}
