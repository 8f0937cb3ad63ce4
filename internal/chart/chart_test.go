package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DataSum/internal/analyzer"
)

func barData() analyzer.ChartData {
	return analyzer.ChartData{
		Name:       "survival_by_class",
		Title:      "Survival by Passenger Class",
		Kind:       analyzer.ChartBar,
		XLabel:     "Passenger Class",
		YLabel:     "Survival Rate",
		Categories: []string{"1", "2", "3"},
		Series: []analyzer.Series{{Name: "Survival Rate", Values: []analyzer.Scalar{
			analyzer.Some(0.6), analyzer.Some(0.3), {},
		}}},
	}
}

func TestRenderTextBar(t *testing.T) {
	out := RenderText(barData(), TextOptions{Width: 10})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Survival by Passenger Class", lines[0])
	assert.Equal(t, "Passenger Class · Survival Rate", lines[1])
	assert.Equal(t, "1 │"+strings.Repeat("█", 10)+" 0.60", lines[2])
	assert.Equal(t, "2 │"+strings.Repeat("█", 5)+strings.Repeat(" ", 5)+" 0.30", lines[3])
	assert.Equal(t, "3 │"+strings.Repeat(" ", 10)+" N/A", lines[4])
}

func TestRenderTextGroupedBar(t *testing.T) {
	c := analyzer.ChartData{
		Title:      "Survival by Gender",
		Kind:       analyzer.ChartGroupedBar,
		Categories: []string{"female", "male"},
		Series: []analyzer.Series{
			{Name: "Did Not Survive", Values: []analyzer.Scalar{analyzer.Some(81), analyzer.Some(468)}},
			{Name: "Survived", Values: []analyzer.Scalar{analyzer.Some(233), analyzer.Some(109)}},
		},
	}
	out := RenderText(c, TextOptions{Width: 20})

	assert.Contains(t, out, "female │")
	assert.Contains(t, out, "       │")
	assert.Contains(t, out, "█ Did Not Survive  ▒ Survived")
	assert.Contains(t, out, strings.Repeat("█", 20)+" 468")
}

func TestRenderTextTruncatesCategories(t *testing.T) {
	c := barData()
	out := RenderText(c, TextOptions{Width: 10, MaxCategories: 2})
	assert.Contains(t, out, "… 1 more")
	assert.NotContains(t, out, "3 │")
}

func TestRenderTextEmpty(t *testing.T) {
	c := barData()
	c.Series[0].Values = []analyzer.Scalar{{}, {}, {}}
	assert.Contains(t, RenderText(c, TextOptions{}), "No data to display")

	box := analyzer.ChartData{Title: "Fare", Kind: analyzer.ChartBoxPlot}
	assert.Contains(t, RenderText(box, TextOptions{}), "No data to display")
}

func TestRenderTextHeatmap(t *testing.T) {
	c := analyzer.ChartData{
		Title: "Correlation Matrix",
		Kind:  analyzer.ChartHeatmap,
		Matrix: &analyzer.Matrix{
			Columns: []string{"age", "fare"},
			Values: [][]analyzer.Scalar{
				{analyzer.Some(1), analyzer.Some(0.1)},
				{analyzer.Some(0.1), {}},
			},
		},
	}
	out := RenderText(c, TextOptions{})
	assert.Contains(t, out, "age     1.00   0.10")
	assert.Contains(t, out, "fare    0.10    N/A")
}

func TestRenderTextBoxPlot(t *testing.T) {
	c := analyzer.ChartData{
		Title: "Fare Spread",
		Kind:  analyzer.ChartBoxPlot,
		Box: &analyzer.BoxStats{
			Label: "fare", Count: 10, Min: 0, Q1: 2, Median: 4, Q3: 6, Max: 20,
			LowerFen: 0, UpperFen: 10, Outliers: []float64{20},
		},
	}
	out := RenderText(c, TextOptions{Width: 21})
	assert.Contains(t, out, "fare ├")
	assert.Contains(t, out, "┃")
	assert.Contains(t, out, "∘")
	assert.Contains(t, out, "min 0  q1 2  median 4  q3 6  max 20  (n=10, 1 outliers)")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 5, 10}, 3))
	assert.Equal(t, "▁▁", Sparkline([]float64{3, 3}, 5))
	assert.Empty(t, Sparkline(nil, 5))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "N/A", FormatValue(analyzer.Scalar{}))
	assert.Equal(t, "1,234", FormatValue(analyzer.Some(1234)))
	assert.Equal(t, "-12,345,678", FormatValue(analyzer.Some(-12345678)))
	assert.Equal(t, "0.38", FormatValue(analyzer.Some(0.3838)))
}

func TestRenderImage(t *testing.T) {
	for _, format := range []Format{FormatPNG, FormatSVG} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderImage(&buf, barData(), format, ImageOptions{Width: 400, Height: 300}))
			require.NotZero(t, buf.Len())
			if format == FormatPNG {
				assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
			} else {
				assert.Contains(t, buf.String(), "<svg")
			}
		})
	}
}

func TestRenderImageErrors(t *testing.T) {
	var buf bytes.Buffer

	err := RenderImage(&buf, analyzer.ChartData{Kind: analyzer.ChartHeatmap}, FormatPNG, ImageOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedChart))

	empty := barData()
	empty.Series[0].Values = []analyzer.Scalar{analyzer.Some(0), {}, {}}
	err = RenderImage(&buf, empty, FormatPNG, ImageOptions{})
	assert.True(t, errors.Is(err, ErrEmptyChart))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = FormatFromPath("out/chart.svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = FormatFromPath("chart.gif")
	assert.Error(t, err)
}
