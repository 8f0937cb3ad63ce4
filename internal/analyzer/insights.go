package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// InsightGenerator derives observations from a finished analysis
type InsightGenerator struct {
	missingThreshold     float64 // Minimum missing share to report a column
	correlationThreshold float64 // Minimum |r| to report a pair
	gapThreshold         float64 // Minimum spread between group rates
	smallViewThreshold   int     // Views below this size are flagged
}

// NewInsightGenerator creates a new insight generator
func NewInsightGenerator() *InsightGenerator {
	return &InsightGenerator{
		missingThreshold:     0.2,
		correlationThreshold: 0.5,
		gapThreshold:         0.25,
		smallViewThreshold:   30,
	}
}

// GenerateInsights returns insights sorted by confidence, highest first
func (g *InsightGenerator) GenerateInsights(a *Analysis) []Insight {
	insights := []Insight{}
	if a.Rows == 0 {
		return insights
	}

	insights = append(insights, g.detectSmallView(a)...)
	insights = append(insights, g.detectMissingData(a)...)
	insights = append(insights, g.detectCorrelations(a)...)
	insights = append(insights, g.detectGroupGaps(a)...)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})
	return insights
}

func (g *InsightGenerator) detectSmallView(a *Analysis) []Insight {
	if a.Rows >= g.smallViewThreshold || a.Rows == a.Total {
		return nil
	}
	return []Insight{{
		Type:        InsightSmallView,
		Title:       "Small Selection",
		Description: fmt.Sprintf("Only %d of %d records match the filters; statistics may be unstable", a.Rows, a.Total),
		Confidence:  0.9,
	}}
}

// detectMissingData flags numeric columns with many absent values
func (g *InsightGenerator) detectMissingData(a *Analysis) []Insight {
	var insights []Insight
	for _, cs := range a.Describe {
		share := float64(a.Rows-cs.Count) / float64(a.Rows)
		if share < g.missingThreshold {
			continue
		}
		insights = append(insights, Insight{
			Type:        InsightMissingData,
			Title:       "Missing Values: " + cs.Column,
			Description: fmt.Sprintf("%.0f%% of %s values are missing and are excluded from averages", share*100, cs.Column),
			Confidence:  math.Min(0.95, 0.5+share/2),
		})
	}
	return insights
}

// detectCorrelations reports strongly correlated column pairs
func (g *InsightGenerator) detectCorrelations(a *Analysis) []Insight {
	m := a.Correlation
	if m == nil {
		return nil
	}
	var insights []Insight
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			c := m.Values[i][j]
			if !c.Valid || math.Abs(c.Value) < g.correlationThreshold {
				continue
			}
			direction := "positively"
			if c.Value < 0 {
				direction = "negatively"
			}
			insights = append(insights, Insight{
				Type:        InsightCorrelation,
				Title:       fmt.Sprintf("Correlation: %s / %s", m.Columns[i], m.Columns[j]),
				Description: fmt.Sprintf("%s and %s are %s correlated (r = %.2f)", m.Columns[i], m.Columns[j], direction, c.Value),
				Confidence:  math.Abs(c.Value),
			})
		}
	}
	return insights
}

// detectGroupGaps reports bar charts whose groups differ widely
func (g *InsightGenerator) detectGroupGaps(a *Analysis) []Insight {
	var insights []Insight
	for _, c := range a.Charts {
		if c.Kind != ChartBar || len(c.Series) != 1 || len(c.Categories) < 2 {
			continue
		}
		lo, hi := -1, -1
		vals := c.Series[0].Values
		for i, v := range vals {
			if !v.Valid {
				continue
			}
			if lo < 0 || v.Value < vals[lo].Value {
				lo = i
			}
			if hi < 0 || v.Value > vals[hi].Value {
				hi = i
			}
		}
		if lo < 0 || lo == hi {
			continue
		}
		spread := vals[hi].Value - vals[lo].Value
		if vals[hi].Value <= 1 && spread < g.gapThreshold {
			continue
		}
		if vals[hi].Value > 1 && vals[lo].Value > 0 && vals[hi].Value/vals[lo].Value < 2 {
			continue
		}
		insights = append(insights, Insight{
			Type:  InsightGroupGap,
			Title: "Group Gap: " + c.Title,
			Description: fmt.Sprintf("%s is highest for %s (%s) and lowest for %s (%s)",
				c.Series[0].Name, c.Categories[hi], vals[hi], c.Categories[lo], vals[lo]),
			Confidence: math.Min(0.95, 0.6+spread/2),
		})
	}
	return insights
}
