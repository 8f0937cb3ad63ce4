package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
)

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"text", false},
		{"json", false},
		{"markdown", false},
		{"md", false},
		{"csv", false},
		{"prompt", false},
		{"xml", true},
	}

	for _, tt := range tests {
		f, err := New(tt.format, Options{})
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q) should fail", tt.format)
			}
			continue
		}
		if err != nil || f == nil {
			t.Errorf("New(%q) failed: %v", tt.format, err)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	ds := testDataset(t)
	a := testAnalysis(t, dataset.NewView(ds, []int{0, 2}), "group in [a]")

	out, err := NewJSONWithPreview(1).Format(a)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var doc struct {
		Summary struct {
			Title   string   `json:"title"`
			Total   int      `json:"total"`
			Rows    int      `json:"rows"`
			Showing string   `json:"showing"`
			Filters []string `json:"filters"`
		} `json:"summary"`
		Metrics []struct {
			Name  string   `json:"name"`
			Value *float64 `json:"value"`
		} `json:"metrics"`
		Preview struct {
			Columns []string `json:"columns"`
			Rows    [][]any  `json:"rows"`
		} `json:"preview"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	if doc.Summary.Title != "People Explorer" || doc.Summary.Total != 5 || doc.Summary.Rows != 2 {
		t.Errorf("unexpected summary: %+v", doc.Summary)
	}
	if doc.Summary.Showing != "Showing 2 of 5 people" {
		t.Errorf("unexpected showing line: %q", doc.Summary.Showing)
	}
	if len(doc.Summary.Filters) != 1 {
		t.Errorf("expected one filter, got %v", doc.Summary.Filters)
	}
	if len(doc.Metrics) != 3 || doc.Metrics[0].Value == nil || *doc.Metrics[0].Value != 2 {
		t.Errorf("unexpected metrics: %s", out)
	}
	if len(doc.Preview.Rows) != 1 || len(doc.Preview.Columns) != 4 {
		t.Fatalf("expected a one-row preview, got %+v", doc.Preview)
	}
	if age, ok := doc.Preview.Rows[0][2].(float64); !ok || age != 22 {
		t.Errorf("numbers should stay numeric in the preview, got %#v", doc.Preview.Rows[0][2])
	}
}

func TestJSONFormat_EmptyViewUsesNull(t *testing.T) {
	ds := testDataset(t)
	out, err := NewJSON().Format(testAnalysis(t, dataset.NewView(ds, nil)))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if strings.Contains(string(out), "NaN") {
		t.Errorf("JSON must not contain NaN:\n%s", out)
	}
	if !strings.Contains(string(out), `"value": null`) {
		t.Errorf("absent metrics should be null:\n%s", out)
	}
}

func TestMarkdownFormat(t *testing.T) {
	ds := testDataset(t)
	out, err := NewMarkdown().Format(testAnalysis(t, dataset.All(ds)))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"# People Explorer",
		"## Table of Contents",
		"| Total People | 5 |",
		"**Filters:** none",
		"### Survival by Group",
		"| a | 1 |",
		"## Statistics",
		"## Data Preview",
		"| name | group | age | survived |",
		"| Cy | a |  | 1 |",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown missing %q\n%s", want, output)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	ds := testDataset(t)
	a := testAnalysis(t, dataset.NewView(ds, []int{1, 3}))

	out, err := NewCSV(';').Format(a)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	want := "name;group;age;survived\nBob;b;38;0\nDi;b;54;0\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestPromptFormat(t *testing.T) {
	ds := testDataset(t)
	out, err := NewPrompt().Format(testAnalysis(t, dataset.All(ds), "group in [a, b]"))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"data analyst",
		"Dataset: people",
		"Showing 5 of 5 people",
		"Filters: group in [a, b]",
		"Survival Rate: 60.0%",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("prompt missing %q\n%s", want, output)
		}
	}
}

func TestGenerateRecommendations(t *testing.T) {
	empty := &analyzer.Analysis{Rows: 0, Filters: []string{"a = 1", "b = 2"}}
	recs := generateRecommendations(empty)
	if len(recs) != 2 || !strings.Contains(recs[1], "b = 2") {
		t.Errorf("unexpected recommendations for empty view: %v", recs)
	}

	small := &analyzer.Analysis{Rows: 3, Insights: []analyzer.Insight{{Type: analyzer.InsightSmallView}}}
	if recs := generateRecommendations(small); len(recs) != 1 || !strings.Contains(recs[0], "Broaden") {
		t.Errorf("unexpected recommendations for small view: %v", recs)
	}

	plain := &analyzer.Analysis{Rows: 10}
	if recs := generateRecommendations(plain); len(recs) != 3 {
		t.Errorf("expected generic recommendations, got %v", recs)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for n, want := range cases {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
