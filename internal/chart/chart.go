// Package chart renders category counts as SVG proportion charts.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/nonfiler/internal/core"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart has no data")

// Size of the rendered chart in pixels.
const (
	Width  = 512
	Height = 512
)

// palette is applied to slices in order and repeats for long category lists.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
}

// Label returns the slice label for a category, e.g. "Punjab (60.5%)".
func Label(c core.CategoryCount) string {
	return fmt.Sprintf("%s (%s%%)", c.Label, c.Percent.String())
}

// Values converts category counts to chart values in the given order.
func Values(counts []core.CategoryCount) []chart.Value {
	values := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: Label(c),
			Value: float64(c.Count),
			Style: chart.Style{
				FillColor:   palette[i%len(palette)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	return values
}

// Render writes an SVG chart of counts for dim. Dimensions drawn with a
// center hole use a donut chart, the rest a pie chart.
func Render(w io.Writer, dim core.Dimension, counts []core.CategoryCount) error {
	values := Values(counts)
	if len(values) == 0 {
		return ErrNoData
	}

	var r interface {
		Render(chart.RendererProvider, io.Writer) error
	}
	if dim.Hole() {
		r = &chart.DonutChart{
			Title:  dim.Title(),
			Width:  Width,
			Height: Height,
			Values: values,
		}
	} else {
		r = &chart.PieChart{
			Title:  dim.Title(),
			Width:  Width,
			Height: Height,
			Values: values,
		}
	}

	if err := r.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", dim, err)
	}
	return nil
}
