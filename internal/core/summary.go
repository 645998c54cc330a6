package core

// summary.go aggregates the loaded table into the count table and the
// per-dimension proportions shown on the summary page.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary is the headline count table.
type Summary struct {
	Total        int
	Male         int
	Female       int
	Unrecognized int // rows whose gender is neither M nor F
}

// Summarize counts all rows and the rows per gender.
//
// Male+Female+Unrecognized always equals Total. Under GenderStrict any
// unrecognized value fails the summary with ErrUnexpectedCategory.
func Summarize(table *Table, policy GenderPolicy) (Summary, error) {
	if table == nil {
		return Summary{}, ErrNotLoaded
	}

	var s Summary
	unexpected := make(map[string]struct{})

	table.each(func(r Record) bool {
		s.Total++
		switch r.Gender {
		case GenderMale:
			s.Male++
		case GenderFemale:
			s.Female++
		default:
			s.Unrecognized++
			unexpected[r.Gender] = struct{}{}
		}
		return true
	})

	if policy == GenderStrict && s.Unrecognized > 0 {
		values := make([]string, 0, len(unexpected))
		for v := range unexpected {
			values = append(values, fmt.Sprintf("%q", v))
		}
		sort.Strings(values)
		return Summary{}, fmt.Errorf("%w: %d rows with %s", ErrUnexpectedCategory, s.Unrecognized, strings.Join(values, ", "))
	}

	return s, nil
}

// CategoryCount is one slice of a proportion chart.
type CategoryCount struct {
	Label   string
	Count   int
	Percent decimal.Decimal // share of the counted rows, one decimal place
}

var hundred = decimal.NewFromInt(100)

// ChartData groups the table by dim and returns counts ordered by count
// descending; ties keep the order in which the values first appear. Empty
// values are not counted.
func ChartData(table *Table, dim Dimension) ([]CategoryCount, error) {
	if table == nil {
		return nil, ErrNotLoaded
	}
	if dim != DimensionGender && dim != DimensionProvince {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}

	counts := make(map[string]int)
	var order []string
	total := 0

	table.each(func(r Record) bool {
		v := dim.value(r)
		if v == "" {
			return true
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
		total++
		return true
	})

	out := make([]CategoryCount, len(order))
	for i, label := range order {
		out[i] = CategoryCount{Label: label, Count: counts[label]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if total > 0 {
		denom := decimal.NewFromInt(int64(total))
		for i := range out {
			out[i].Percent = decimal.NewFromInt(int64(out[i].Count)).Mul(hundred).Div(denom).Round(1)
		}
	}

	return out, nil
}
