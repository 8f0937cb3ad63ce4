package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/sample"
	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/monitor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ds, err := sample.Titanic()
	require.NoError(t, err)
	s, err := New(ds, dashboard.Titanic(), Config{Addr: "127.0.0.1:0", PreviewRows: 5}, monitor.New(), nil)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func countWhere(ds *dataset.Dataset, column, want string) int {
	n := 0
	for row := 0; row < ds.Len(); row++ {
		if ds.Value(row, column).String() == want {
			n++
		}
	}
	return n
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","dataset":"titanic","rows":891}`, rec.Body.String())
}

func TestDatasetEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows    int `json:"rows"`
		Filters []struct {
			Name    string   `json:"name"`
			Widget  string   `json:"widget"`
			Choices []string `json:"choices"`
			Min     *float64 `json:"min"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 891, resp.Rows)
	require.Len(t, resp.Filters, 7)
	assert.Equal(t, []string{"1", "2", "3"}, resp.Filters[0].Choices)
	assert.Equal(t, "slider", resp.Filters[1].Widget)
	assert.NotNil(t, resp.Filters[1].Min)
	assert.Equal(t, []string{"All", "male", "female"}, resp.Filters[2].Choices)
}

func TestViewEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/view?pclass=1&preview=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Summary struct {
			Rows    int      `json:"rows"`
			Filters []string `json:"filters"`
		} `json:"summary"`
		Preview struct {
			Rows [][]any `json:"rows"`
		} `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, countWhere(s.Dataset(), "pclass", "1"), resp.Summary.Rows)
	assert.Equal(t, []string{"pclass in [1]"}, resp.Summary.Filters)
	assert.Len(t, resp.Preview.Rows, 2)
}

func TestViewEndpoint_EmptyViewIsNull(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/view?age=500..")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Metrics []struct {
			Name  string   `json:"name"`
			Value *float64 `json:"value"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Metrics, 4)
	assert.Equal(t, 0.0, *resp.Metrics[0].Value)
	for _, m := range resp.Metrics[1:] {
		assert.Nil(t, m.Value, "%s should be null", m.Name)
	}
}

func TestBadFilterInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"unknown filter", "/api/view?cabin=C85", "unknown filter"},
		{"malformed range", "/api/view?age=old", "age"},
		{"bad preview", "/api/view?preview=many", "preview"},
		{"bad delimiter", "/export.csv?delimiter=x", "delimiter"},
		{"unknown export column", "/export.csv?columns=nope", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/export.csv?sex=female&delimiter=tab")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/tab-separated-values")
	assert.Equal(t, `attachment; filename="titanic_filtered.tsv"`, rec.Header().Get("Content-Disposition"))

	r := csv.NewReader(rec.Body)
	r.Comma = '\t'
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, countWhere(s.Dataset(), "sex", "female")+1)
	assert.Equal(t, s.Dataset().ColumnNames(), records[0])
}

func TestExportCSV_Columns(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/export.csv?columns=sex,age&age=..10")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "sex,age", lines[0])
	assert.Greater(t, len(lines), 1)
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/export.xlsx?pclass=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "titanic_filtered.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, countWhere(s.Dataset(), "pclass", "2")+1)
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/charts/survival_by_class.png?sex=male")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = get(t, s, "/charts/age_distribution.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	assert.Equal(t, http.StatusUnprocessableEntity, get(t, s, "/charts/correlation.png").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, get(t, s, "/charts/survival_by_class.png?age=500..").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/charts/nope.svg").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/charts/survival_by_class.gif").Code)
}

func TestReport(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/report?survived=true")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<title>Titanic Dataset Explorer</title>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "survived")
}

func TestMetricsAndStats(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/view")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `datasum_http_requests_total{code="200",route="/api/view"} 1`)
	assert.Contains(t, body, "datasum_operation_duration_seconds")

	rec = get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"operation": "analyze"`)
}

func TestSwap(t *testing.T) {
	s := newTestServer(t)

	// a dataset that lacks the dashboard's columns is rejected
	other, err := dataset.FromRecords("other", []string{"x"}, [][]string{{"1"}}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Swap(other))
	assert.Equal(t, 891, s.Dataset().Len())

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, dataset.All(s.Dataset()).Head(10), export.Options{}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	smaller, err := dataset.FromRecords("titanic", records[0], records[1:], dashboard.Titanic().Kinds)
	require.NoError(t, err)

	require.NoError(t, s.Swap(smaller))
	assert.Contains(t, get(t, s, "/healthz").Body.String(), `"rows": 10`)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, nil, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
