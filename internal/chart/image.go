package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/yildizm/DataSum/internal/analyzer"
)

var (
	// ErrUnsupportedChart is returned for chart kinds with no image rendering
	ErrUnsupportedChart = errors.New("chart kind has no image rendering")
	// ErrEmptyChart is returned when a chart has nothing to draw
	ErrEmptyChart = errors.New("chart has no data")
)

// Format is an image encoding
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat parses an image format name or file extension
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q (must be png or svg)", s)
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) renderer() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// ImageOptions sizes rendered images
type ImageOptions struct {
	Width  int
	Height int
}

// DefaultImageOptions returns the default image size
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Width: 800, Height: 480}
}

// RenderImage draws a bar, histogram or grouped bar chart. Grouped bars are
// drawn side by side, one color per series.
func RenderImage(w io.Writer, c analyzer.ChartData, format Format, opts ImageOptions) error {
	switch c.Kind {
	case analyzer.ChartBar, analyzer.ChartHistogram, analyzer.ChartGroupedBar:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedChart, c.Kind)
	}
	if c.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptyChart, c.Name)
	}
	if opts.Width < 1 || opts.Height < 1 {
		opts = DefaultImageOptions()
	}

	bars := chartBars(c)
	low, top := 0.0, 0.0
	for _, bar := range bars {
		low = math.Min(low, bar.Value)
		top = math.Max(top, bar.Value)
	}
	if top == low {
		top = low + 1
	}

	bc := gochart.BarChart{
		Title:      c.Title,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth(opts.Width, len(bars)),
		BarSpacing: max(2, barWidth(opts.Width, len(bars))/3),
		XAxis:      gochart.Style{TextRotationDegrees: rotation(bars)},
		YAxis: gochart.YAxis{
			Name:  c.YLabel,
			Range: &gochart.ContinuousRange{Min: low, Max: top + (top-low)*0.05},
		},
		Bars: bars,
	}

	if err := bc.Render(format.renderer(), w); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", c.Name, err)
	}
	return nil
}

func chartBars(c analyzer.ChartData) []gochart.Value {
	var bars []gochart.Value
	for i, cat := range c.Categories {
		for si, s := range c.Series {
			label := cat
			if len(c.Series) > 1 {
				label = cat + " · " + s.Name
			}
			v := s.Values[i]
			value := 0.0
			if v.Valid {
				value = v.Value
			}
			color := gochart.GetDefaultColor(si)
			bars = append(bars, gochart.Value{
				Label: label,
				Value: value,
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}
	return bars
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	return max(4, (width-120)*2/(3*n))
}

func rotation(bars []gochart.Value) float64 {
	longest := 0
	for _, b := range bars {
		longest = max(longest, len(b.Label))
	}
	if len(bars) > 8 || longest > 12 {
		return 45
	}
	return 0
}
