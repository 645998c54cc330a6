package core

import (
	"fmt"
	"strings"
	"time"
)

// Column names the dataset must provide.
const (
	ColName     = "Name"
	ColID       = "Registration No."
	ColGender   = "Gender"
	ColProvince = "Province"
)

// RequiredColumns lists the headers a dataset must contain to be loaded.
var RequiredColumns = []string{ColName, ColID, ColGender, ColProvince}

// Gender codes as they appear in the dataset.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Record is one non-filer row.
type Record struct {
	Name     string
	ID       Identifier // zero if RawID is not a valid identifier
	RawID    string     // cell text as it appeared in the file
	Gender   string
	Province string
	Values   []string // every column of the row, in Table.Columns order
}

// Table is an immutable, in-memory copy of the dataset.
// It is built once by the loader and only read afterwards.
type Table struct {
	columns            []string
	records            []Record
	invalidIdentifiers int
	source             string
	loadedAt           time.Time
}

// NewTable builds a table from a header and its rows. The identifier column
// is parsed into an Identifier; rows whose identifier does not parse are kept
// but never match an identifier search.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[strings.TrimSpace(c)] = i
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	t := &Table{
		columns: append([]string(nil), columns...),
		records: make([]Record, 0, len(rows)),
	}

	for line, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", line+1, len(row), len(columns))
		}
		rec := Record{
			Name:     row[idx[ColName]],
			RawID:    row[idx[ColID]],
			Gender:   row[idx[ColGender]],
			Province: row[idx[ColProvince]],
			Values:   append([]string(nil), row...),
		}
		if id, err := ParseIdentifier(rec.RawID); err == nil {
			rec.ID = id
		} else {
			t.invalidIdentifiers++
		}
		t.records = append(t.records, rec)
	}

	return t, nil
}

// Columns returns the header in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Record returns row i.
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// InvalidIdentifiers returns how many rows carry an unparseable identifier.
func (t *Table) InvalidIdentifiers() int {
	return t.invalidIdentifiers
}

// Source returns the URL the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// LoadedAt returns when the table finished loading.
func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// each calls fn for every record in file order until fn returns false.
func (t *Table) each(fn func(Record) bool) {
	for _, r := range t.records {
		if !fn(r) {
			return
		}
	}
}

// SearchMode selects how a search query is matched.
type SearchMode string

const (
	ModeFullName    SearchMode = "full"
	ModeIdentifier  SearchMode = "id"
	ModePartialName SearchMode = "partial"
)

// SearchModes lists the modes in display order.
var SearchModes = []SearchMode{ModeFullName, ModeIdentifier, ModePartialName}

// Label returns the user-facing name of the mode.
func (m SearchMode) Label() string {
	switch m {
	case ModeFullName:
		return "Full Name"
	case ModeIdentifier:
		return "ID Card Number"
	case ModePartialName:
		return "First/Last Name"
	default:
		return string(m)
	}
}

// ParseSearchMode accepts a mode key or its display label.
func ParseSearchMode(s string) (SearchMode, error) {
	s = strings.TrimSpace(s)
	for _, m := range SearchModes {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Dimension is a categorical column summaries can be grouped by.
type Dimension string

const (
	DimensionGender   Dimension = "gender"
	DimensionProvince Dimension = "province"
)

// Dimensions lists the chartable dimensions in display order.
var Dimensions = []Dimension{DimensionGender, DimensionProvince}

// Title returns the chart heading for the dimension.
func (d Dimension) Title() string {
	switch d {
	case DimensionGender:
		return "Non Filers (Male vs Female)"
	case DimensionProvince:
		return "Non Filers by Province"
	default:
		return string(d)
	}
}

// Hole reports whether the proportion chart is drawn with a center hole.
func (d Dimension) Hole() bool {
	return d == DimensionProvince
}

func (d Dimension) value(r Record) string {
	if d == DimensionGender {
		return r.Gender
	}
	return r.Province
}

// ParseDimension accepts a dimension key or its chart title.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	for _, d := range Dimensions {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Title()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// GenderPolicy decides what Summarize does with gender values other than M and F.
type GenderPolicy string

const (
	// GenderTolerate counts unexpected values as unrecognized.
	GenderTolerate GenderPolicy = "tolerate"
	// GenderStrict fails the summary with ErrUnexpectedCategory.
	GenderStrict GenderPolicy = "strict"
)

// ParseGenderPolicy converts a config value to a GenderPolicy.
func ParseGenderPolicy(s string) (GenderPolicy, error) {
	switch GenderPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case GenderTolerate, "":
		return GenderTolerate, nil
	case GenderStrict:
		return GenderStrict, nil
	}
	return "", fmt.Errorf("unknown gender policy %q", s)
}

// LoadReport describes a completed load.
type LoadReport struct {
	Source             string
	Rows               int
	Columns            int
	InvalidIdentifiers int
	Bytes              int64
	LoadedAt           time.Time
	Elapsed            time.Duration
}

// Seconds returns the elapsed time rounded to whole seconds.
func (r LoadReport) Seconds() int {
	return int(r.Elapsed.Round(time.Second) / time.Second)
}
