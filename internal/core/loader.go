package core

// loader.go fetches the non-filer CSV and turns it into a Table.
//
// The body is read in full before parsing so that transport failures and
// malformed files are reported as distinct LoadError ops. On the way in it
// is capped, stripped of a BOM and made valid UTF-8 (see body.go). Parsing goes
// through the gota dataframe reader with every column typed as a string;
// the registration number in particular must never be read as a number.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/JonMunkholm/nonfiler/internal/config"
	"github.com/JonMunkholm/nonfiler/internal/logging"
)

// missingValues are the cell spellings read as "no value".
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// Loader retrieves the dataset from its configured URL.
type Loader struct {
	client   *http.Client
	url      string
	timeout  time.Duration
	maxBytes int64
	now      func() time.Time
}

// NewLoader creates a loader for cfg. A nil client uses http.DefaultClient.
func NewLoader(cfg config.DatasetConfig, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		client:   client,
		url:      cfg.URL,
		timeout:  cfg.FetchTimeout,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
}

// URL returns the dataset location.
func (l *Loader) URL() string {
	return l.url
}

// Load downloads and parses the dataset. Every failure is a *LoadError;
// there is no retry.
func (l *Loader) Load(ctx context.Context) (*Table, LoadReport, error) {
	start := l.now()
	logger := logging.WithFields(ctx, "url", l.url)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	data, size, err := l.fetch(ctx)
	if err != nil {
		return nil, LoadReport{}, &LoadError{Op: OpFetch, URL: l.url, Err: err}
	}
	logger.Debug("dataset downloaded", "bytes", size)

	table, err := parseCSV(data)
	if err != nil {
		return nil, LoadReport{}, &LoadError{Op: OpParse, URL: l.url, Err: err}
	}

	table.source = l.url
	table.loadedAt = l.now()

	report := LoadReport{
		Source:             table.Source(),
		Rows:               table.Len(),
		Columns:            len(table.columns),
		InvalidIdentifiers: table.InvalidIdentifiers(),
		Bytes:              size,
		LoadedAt:           table.LoadedAt(),
		Elapsed:            table.LoadedAt().Sub(start),
	}
	if report.InvalidIdentifiers > 0 {
		logger.Warn("rows with malformed registration numbers",
			"count", report.InvalidIdentifiers,
			"rows", report.Rows,
		)
	}

	return table, report, nil
}

// fetch returns the cleaned response body and the raw byte count, bounded
// by maxBytes.
func (l *Loader) fetch(ctx context.Context) ([]byte, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, counter := wrapBody(resp.Body, l.maxBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, counter.BytesRead(), err
	}
	return data, counter.BytesRead(), nil
}

// parseCSV reads every column as text and builds a Table.
//
// The header is checked before the dataframe reader runs: gota rejects a
// file without data rows, but a header-only file with the right columns is
// a valid, empty table.
func parseCSV(data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty file")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	empty, err := NewTable(header, nil)
	if err != nil {
		return nil, err
	}
	if _, err := r.Read(); errors.Is(err, io.EOF) {
		return empty, nil
	} else if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{ColID: series.String}),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("invalid csv: %w", df.Err)
	}

	names := df.Names()
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = df.Col(name)
	}

	rows := make([][]string, df.Nrow())
	for i := range rows {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = cellText(col.Elem(i))
		}
		rows[i] = row
	}

	return NewTable(names, rows)
}

func cellText(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	return e.String()
}
