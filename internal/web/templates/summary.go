package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/nonfiler/internal/core"
)

// SummaryData is the state of the summary page.
type SummaryData struct {
	Summary   core.Summary
	Dimension core.Dimension
	Counts    []core.CategoryCount
	Alert     templ.Component
	Loaded    bool
}

// ChartURL returns the SVG endpoint for dim.
func ChartURL(dim core.Dimension) string {
	return "/summary/chart/" + string(dim) + ".svg"
}
