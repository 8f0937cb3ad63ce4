package dashboard

import (
	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/filter"
)

const titanicAbout = `**The Titanic Dataset**

This dataset contains information about passengers on the RMS Titanic, which sank on April 15, 1912.

**Column Descriptions:**

- **survived**: Whether the passenger survived (0 = No, 1 = Yes)
- **pclass**: Ticket class (1 = 1st, 2 = 2nd, 3 = 3rd)
- **sex**: Passenger's gender
- **age**: Age in years
- **sibsp**: Number of siblings/spouses aboard
- **parch**: Number of parents/children aboard
- **fare**: Ticket fare paid in pounds sterling
- **embarked**: Port of embarkation (C = Cherbourg, Q = Queenstown, S = Southampton)
- **class**: Ticket class as a string
- **who**: Passenger group (man, woman, child)
- **adult_male**: Whether the passenger is an adult male
- **deck**: Cabin deck (many missing)
- **embark_town**: Town of embarkation
- **alive**: Survival status as text
- **alone**: Whether the passenger was alone
`

// Titanic returns the built-in passenger explorer
func Titanic() *Definition {
	return &Definition{
		Title:       "Titanic Dataset Explorer",
		Description: "Explore passenger data from the Titanic disaster",
		Icon:        "🚢",
		Noun:        "passengers",
		Source:      "sample:titanic",
		Kinds: map[string]dataset.Kind{
			"adult_male": dataset.KindBoolean,
			"alone":      dataset.KindBoolean,
		},
		Filters: []filter.Spec{
			{Name: "pclass", Kind: filter.KindIn, Column: "pclass", Label: "Select Passenger Class:", Widget: filter.WidgetMultiSelect},
			{Name: "age", Kind: filter.KindRange, Column: "age", Label: "Select age Range:", Widget: filter.WidgetSlider, Step: 1},
			{Name: "sex", Kind: filter.KindEquals, Column: "sex", Label: "Select Gender:", Widget: filter.WidgetRadio,
				Options: []string{filter.AllOption, "male", "female"}},
			{Name: "embarked", Kind: filter.KindEquals, Column: "embarked", Label: "Embarkation Port:", Widget: filter.WidgetSelectBox},
			{Name: "survived", Kind: filter.KindFlag, Column: "survived", Label: "Show Survivors Only", Widget: filter.WidgetCheckbox},
			{Name: "fare", Kind: filter.KindMin, Column: "fare", Label: "Minimum Fare ($):", Widget: filter.WidgetNumber, Step: 10},
			{Name: "search", Kind: filter.KindSearch, Fields: []string{"who", "class", "embark_town", "deck"},
				Label: "Search Text:", Widget: filter.WidgetText},
		},
		Metrics: []analyzer.MetricSpec{
			{Name: "total", Label: "Total Passengers", Kind: analyzer.MetricCount, Format: analyzer.FormatInteger},
			{Name: "survival_rate", Label: "Survival Rate", Kind: analyzer.MetricRate, Column: "survived", Format: analyzer.FormatPercent},
			{Name: "avg_age", Label: "Average age", Kind: analyzer.MetricMean, Column: "age", Format: analyzer.FormatDecimal},
			{Name: "avg_fare", Label: "Average Fare", Kind: analyzer.MetricMean, Column: "fare", Format: analyzer.FormatCurrency},
		},
		Charts: []analyzer.ChartSpec{
			{Name: "survival_by_class", Title: "Survival by Passenger Class", Kind: analyzer.ChartBar,
				Column: "pclass", Value: "survived", Agg: analyzer.AggRate,
				XLabel: "Passenger Class", YLabel: "Survival Rate"},
			{Name: "age_distribution", Title: "age Distribution", Kind: analyzer.ChartHistogram,
				Column: "age", Bins: 20, XLabel: "age", YLabel: "Count"},
			{Name: "survival_by_gender", Title: "Survival by Gender", Kind: analyzer.ChartGroupedBar,
				Column: "sex", Value: "survived", XLabel: "Gender", YLabel: "Count",
				Labels: map[string]string{"0": "Did Not Survive", "1": "Survived"}},
			{Name: "fare_spread", Title: "Fare Spread", Kind: analyzer.ChartBoxPlot, Column: "fare"},
			{Name: "correlation", Title: "Correlation Matrix", Kind: analyzer.ChartHeatmap},
		},
		About: titanicAbout,
	}
}
