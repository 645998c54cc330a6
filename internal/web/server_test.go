package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/nonfiler/internal/config"
	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/metrics"
)

const datasetCSV = `Sr.,Name,Registration No.,Gender,Province
1,Ali Khan,1234567890123,M,Punjab
2,Sara Ali,9876543210987,F,Sindh
`

func testConfig(datasetURL string) *config.Config {
	return &config.Config{
		Dataset:  config.DatasetConfig{URL: datasetURL, MaxBytes: 1 << 20},
		Session:  config.SessionConfig{TTL: time.Minute, MaxSessions: 10, CookieName: "nonfiler_session"},
		Load:     config.LoadConfig{MaxConcurrent: 1, MaxWaitTime: time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testEnv struct {
	app    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, status int, body string, tweak ...func(*config.Config)) *testEnv {
	t.Helper()

	dataset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(dataset.Close)

	cfg := testConfig(dataset.URL)
	for _, fn := range tweak {
		fn(cfg)
	}

	reg := prometheus.NewRegistry()
	svc := core.NewService(core.NewLoader(cfg.Dataset, dataset.Client()), core.ServiceOptions{
		Sessions: core.NewSessionStore(cfg.Session.TTL, cfg.Session.MaxSessions),
		Limiter:  core.NewLoadLimiter(cfg.Load.MaxConcurrent, cfg.Load.MaxWaitTime),
		Metrics:  metrics.NewWithRegistry(reg),
	})
	srv := NewServer(svc, cfg, reg)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	app := httptest.NewServer(srv.Router())
	t.Cleanup(app.Close)

	return &testEnv{app: app, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) do(t *testing.T, method, path string, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.app.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	return e.do(t, http.MethodGet, path)
}

func searchPath(mode, q string) string {
	return "/search?" + url.Values{"mode": {mode}, "q": {q}}.Encode()
}

func TestHome(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)

	resp, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Pakistan Non-Tax Filer Data Lookup")
	assert.Contains(t, body, "Load Data")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))

	u, _ := url.Parse(env.app.URL)
	require.Len(t, env.client.Jar.Cookies(u), 1)
}

func TestSearchAndSummaryBeforeLoad(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)

	paths := []string{
		"/search",
		searchPath("full", "Ali Khan"),
		searchPath("id", "1234567890123"),
		searchPath("partial", "Ali"),
		"/summary",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			resp, body := env.get(t, p)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
			assert.Contains(t, body, "Please load the data by clicking on Load Data button")
			assert.Contains(t, body, "SES001")
		})
	}
}

func TestLoadThenSearch(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)

	resp, body := env.do(t, http.MethodPost, "/load")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Data Load Successfully. Time Taken: 0 seconds")

	t.Run("identifier", func(t *testing.T) {
		resp, body := env.get(t, searchPath("id", "1234567890123"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<td>Ali Khan</td>")
		assert.NotContains(t, body, "<td>Sara Ali</td>")
	})

	t.Run("invalid identifier", func(t *testing.T) {
		resp, body := env.get(t, searchPath("id", "123-456-789"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Enter the ID card number in correct format")
		assert.NotContains(t, body, "<table")
	})

	t.Run("partial", func(t *testing.T) {
		_, body := env.get(t, searchPath("partial", "Ali"))
		assert.Contains(t, body, "Results Found: 2")
		assert.Contains(t, body, "<td>Sara Ali</td>")
	})

	t.Run("no result", func(t *testing.T) {
		resp, body := env.get(t, searchPath("full", "Nobody"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "No Result Found!")
	})

	t.Run("empty query", func(t *testing.T) {
		resp, body := env.get(t, searchPath("id", ""))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Enter the ID number without dashes")
		assert.NotContains(t, body, "No Result Found!")
	})

	t.Run("unknown mode", func(t *testing.T) {
		resp, _ := env.get(t, searchPath("soundex", "Ali"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("htmx gets fragment", func(t *testing.T) {
		_, body := env.do(t, http.MethodGet, searchPath("partial", "Sara"), "HX-Request", "true")
		assert.Contains(t, body, "<td>Sara Ali</td>")
		assert.NotContains(t, body, "<html")
	})
}

func TestSummaryAndCharts(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	env.do(t, http.MethodPost, "/load")

	resp, body := env.get(t, "/summary")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<th>Total Non-Filers</th>")
	assert.Contains(t, body, "<td>2</td><td>1</td><td>1</td>")
	assert.Contains(t, body, "/summary/chart/gender.svg")

	_, body = env.get(t, "/summary?chart=province")
	assert.Contains(t, body, "Non Filers by Province")
	assert.Contains(t, body, "/summary/chart/province.svg")

	for _, dim := range []string{"gender", "province"} {
		resp, body := env.get(t, "/summary/chart/"+dim+".svg")
		assert.Equal(t, http.StatusOK, resp.StatusCode, dim)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "<svg")
	}

	resp, _ = env.get(t, "/summary/chart/district.svg")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoadFailure(t *testing.T) {
	env := newTestEnv(t, http.StatusNotFound, "404: Not Found")

	resp, body := env.do(t, http.MethodPost, "/load")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Unable to download the data")

	resp, _ = env.get(t, "/summary")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAbout(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)

	resp, body := env.get(t, "/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "FBR website")
	assert.Contains(t, body, "zeeshan.altaf@gmail.com")
}

func TestAPI(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)

	resp, body := env.get(t, "/api/summary")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &errResp))
	assert.Equal(t, "SES001", errResp.Code)

	resp, body = env.do(t, http.MethodPost, "/api/load")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var load loadResponse
	require.NoError(t, json.Unmarshal([]byte(body), &load))
	assert.Equal(t, 2, load.Rows)
	assert.Equal(t, 5, load.Columns)

	resp, body = env.get(t, "/api/search?mode=id&q=9876543210987")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var search searchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &search))
	assert.True(t, search.Performed)
	assert.Equal(t, 1, search.Count)
	assert.Equal(t, []string{"2", "Sara Ali", "9876543210987", "F", "Sindh"}, search.Rows[0])

	resp, _ = env.get(t, "/api/search?mode=id&q=")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.get(t, "/api/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum summaryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &sum))
	assert.Equal(t, summaryResponse{Total: 2, Male: 1, Female: 1}, sum)

	resp, body = env.get(t, "/api/chart/province")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ch chartResponse
	require.NoError(t, json.Unmarshal([]byte(body), &ch))
	assert.True(t, ch.Hole)
	require.Len(t, ch.Categories, 2)
	assert.Equal(t, "50", ch.Categories[0].Percent.String())

	resp, body = env.get(t, "/api/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &sess))
	assert.True(t, sess.Loaded)
	assert.Equal(t, 1, sess.Loads.MaxConcurrent)
}

func TestAPI_EndSession(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	u, _ := url.Parse(env.app.URL)

	resp, body := env.do(t, http.MethodPost, "/api/load")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var load loadResponse
	require.NoError(t, json.Unmarshal([]byte(body), &load))
	assert.False(t, load.LoadedAt.IsZero())

	_, body = env.get(t, "/api/session")
	var before sessionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &before))
	require.True(t, before.Loaded)

	resp, _ = env.do(t, http.MethodDelete, "/api/session")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, env.client.Jar.Cookies(u))

	resp, _ = env.get(t, "/api/summary")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, body = env.get(t, "/api/session")
	var after sessionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &after))
	assert.False(t, after.Loaded)
	assert.NotEqual(t, before.SessionID, after.SessionID)
}

func TestAPI_SearchQueryTextDoesNotChangeError(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	env.do(t, http.MethodPost, "/api/load")

	for _, q := range []string{"dataset not loaded", "too many concurrent loads"} {
		resp, body := env.get(t, "/api/search?"+url.Values{"mode": {"id"}, "q": {q}}.Encode())
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, body, `"code":"VAL001"`, q)
	}

	resp, body := env.get(t, searchPath("id", "dataset not loaded"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Enter the ID card number in correct format")
	assert.NotContains(t, body, "SES001")
}

func TestAPI_SearchFormattedID(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	env.do(t, http.MethodPost, "/api/load")

	_, body := env.get(t, "/api/search?mode=id&q=1234567890123")
	var search searchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &search))
	assert.Equal(t, "12345-6789012-3", search.FormattedID)

	_, body = env.get(t, "/api/search?mode=partial&q=Ali")
	assert.NotContains(t, body, "formatted_id")

	_, body = env.get(t, searchPath("id", "1234567890123"))
	assert.Contains(t, body, "12345-6789012-3")
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/unused.csv")
	cfg.Server = config.ServerConfig{Host: "127.0.0.1", Port: 0}
	svc := core.NewService(core.NewLoader(cfg.Dataset, http.DefaultClient), core.ServiceOptions{})
	srv := NewServer(svc, cfg, prometheus.NewRegistry())

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Start())
}

func TestServer_ConcurrentStartAndShutdown(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/unused.csv")
	cfg.Server = config.ServerConfig{Host: "127.0.0.1", Port: 0}
	svc := core.NewService(core.NewLoader(cfg.Dataset, http.DefaultClient), core.ServiceOptions{})
	srv := NewServer(svc, cfg, prometheus.NewRegistry())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestAPI_LoadFailure(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, "Name,Gender\nAli,M\n")

	resp, body := env.do(t, http.MethodPost, "/api/load")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, `"code":"LOAD001"`)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	env.do(t, http.MethodPost, "/load")

	other := &testEnv{app: env.app, client: newClient(t)}
	resp, _ := other.get(t, "/api/summary")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.get(t, "/api/summary")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV)
	env.do(t, http.MethodPost, "/api/load")

	resp, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, body = env.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `nonfiler_dataset_loads_total{outcome="ok"} 1`)
	assert.Contains(t, body, "nonfiler_sessions_active")
}

func TestMetricsRequiresKey(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV, func(c *config.Config) {
		c.Security.MetricsKeys = []string{"k1"}
	})

	resp, _ := env.get(t, "/metrics")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/metrics", "X-API-Key", "k1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, datasetCSV, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	})

	for i := 0; i < 2; i++ {
		resp, _ := env.get(t, "/healthz")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.get(t, "/api/summary")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.True(t, strings.Contains(body, "RATE001"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.LoadError{Op: core.OpFetch}, http.StatusBadGateway},
		{core.ErrNotLoaded, http.StatusConflict},
		{core.ErrInvalidFormat, http.StatusBadRequest},
		{core.ErrUnknownDimension, http.StatusBadRequest},
		{core.ErrUnexpectedCategory, http.StatusUnprocessableEntity},
		{core.ErrTooManyLoads, http.StatusServiceUnavailable},
		{errRateLimited, http.StatusTooManyRequests},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
