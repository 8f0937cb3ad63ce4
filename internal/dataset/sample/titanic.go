// Package sample generates the built-in passenger dataset used when no
// source is given. Output is fully determined by the seed.
package sample

import (
	"math"
	"math/rand"

	"github.com/yildizm/DataSum/internal/dataset"
)

// TitanicConfig configures the passenger generator
type TitanicConfig struct {
	Passengers int   `json:"passengers"`
	Seed       int64 `json:"seed"`
}

// DefaultTitanicConfig matches the size and class split of the real manifest
func DefaultTitanicConfig() TitanicConfig {
	return TitanicConfig{
		Passengers: 891,
		Seed:       42,
	}
}

// TitanicColumns is the column layout of the generated table
var TitanicColumns = []dataset.Column{
	{Name: "survived", Kind: dataset.KindNumeric},
	{Name: "pclass", Kind: dataset.KindNumeric},
	{Name: "sex", Kind: dataset.KindCategorical},
	{Name: "age", Kind: dataset.KindNumeric},
	{Name: "sibsp", Kind: dataset.KindNumeric},
	{Name: "parch", Kind: dataset.KindNumeric},
	{Name: "fare", Kind: dataset.KindNumeric},
	{Name: "embarked", Kind: dataset.KindCategorical},
	{Name: "class", Kind: dataset.KindCategorical},
	{Name: "who", Kind: dataset.KindCategorical},
	{Name: "adult_male", Kind: dataset.KindBoolean},
	{Name: "deck", Kind: dataset.KindCategorical},
	{Name: "embark_town", Kind: dataset.KindCategorical},
	{Name: "alive", Kind: dataset.KindCategorical},
	{Name: "alone", Kind: dataset.KindBoolean},
}

// class shares of the 891 record manifest: 216 first, 184 second, 491 third
var classShares = [3]int{216, 184, 491}

var (
	classNames = [3]string{"First", "Second", "Third"}
	towns      = map[string]string{"S": "Southampton", "C": "Cherbourg", "Q": "Queenstown"}
)

// per class probabilities
var (
	femaleShare   = [3]float64{0.435, 0.413, 0.293}
	femaleSurvive = [3]float64{0.968, 0.921, 0.500}
	maleSurvive   = [3]float64{0.369, 0.157, 0.135}
	ageMissing    = [3]float64{0.139, 0.060, 0.277}
	ageMean       = [3]float64{38.2, 29.9, 25.1}
	fareBase      = [3]float64{84.2, 20.7, 13.7}
	deckKnown     = [3]float64{0.81, 0.09, 0.025}
)

var decks = [3][]string{
	{"A", "B", "C", "D", "E"},
	{"D", "E", "F"},
	{"E", "F", "G"},
}

// TitanicGenerator produces a passenger table with realistic marginals
type TitanicGenerator struct {
	config TitanicConfig
	rng    *rand.Rand
}

// NewTitanicGenerator creates a generator for the given configuration
func NewTitanicGenerator(config TitanicConfig) *TitanicGenerator {
	if config.Passengers <= 0 {
		config.Passengers = DefaultTitanicConfig().Passengers
	}
	return &TitanicGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)), // #nosec G404 - reproducible sample data
	}
}

// Titanic returns the default 891 record sample
func Titanic() (*dataset.Dataset, error) {
	return NewTitanicGenerator(DefaultTitanicConfig()).Generate()
}

// Generate builds the dataset
func (g *TitanicGenerator) Generate() (*dataset.Dataset, error) {
	classes := g.classAssignments()
	rows := make([][]dataset.Value, len(classes))
	for i, pclass := range classes {
		rows[i] = g.passenger(pclass)
	}
	return dataset.New("titanic", TitanicColumns, rows)
}

// classAssignments spreads the manifest class shares over the requested
// size and shuffles them, so counts are exact for the default size.
func (g *TitanicGenerator) classAssignments() []int {
	n := g.config.Passengers
	total := classShares[0] + classShares[1] + classShares[2]
	out := make([]int, 0, n)
	for c := 0; c < 2; c++ {
		k := int(math.Round(float64(classShares[c]) * float64(n) / float64(total)))
		for j := 0; j < k && len(out) < n; j++ {
			out = append(out, c+1)
		}
	}
	for len(out) < n {
		out = append(out, 3)
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *TitanicGenerator) passenger(pclass int) []dataset.Value {
	c := pclass - 1
	female := g.rng.Float64() < femaleShare[c]

	sex := "male"
	if female {
		sex = "female"
	}

	age, hasAge := g.age(c)
	who := "man"
	switch {
	case hasAge && age < 16:
		who = "child"
	case female:
		who = "woman"
	}
	adultMale := who == "man"

	p := maleSurvive[c]
	if female {
		p = femaleSurvive[c]
	}
	if who == "child" {
		p = math.Min(1, p+0.25)
	}
	survived := g.rng.Float64() < p

	sibsp := g.smallCount(0.68, 0.23)
	parch := g.smallCount(0.76, 0.13)
	if who == "child" && parch == 0 {
		parch = 1 + g.rng.Intn(2)
	}
	alone := sibsp == 0 && parch == 0

	fare := fareBase[c] * math.Exp(g.rng.NormFloat64()*0.55)
	fare = math.Round(fare*10000) / 10000

	embarked := g.port(c)

	row := make([]dataset.Value, len(TitanicColumns))
	row[0] = dataset.Number(boolFloat(survived))
	row[1] = dataset.Number(float64(pclass))
	row[2] = dataset.Text(sex)
	row[3] = dataset.Missing()
	if hasAge {
		row[3] = dataset.Number(age)
	}
	row[4] = dataset.Number(float64(sibsp))
	row[5] = dataset.Number(float64(parch))
	row[6] = dataset.Number(fare)
	row[7] = dataset.Missing()
	row[12] = dataset.Missing()
	if embarked != "" {
		row[7] = dataset.Text(embarked)
		row[12] = dataset.Text(towns[embarked])
	}
	row[8] = dataset.Text(classNames[c])
	row[9] = dataset.Text(who)
	row[10] = dataset.Bool(adultMale)
	row[11] = dataset.Missing()
	if g.rng.Float64() < deckKnown[c] {
		row[11] = dataset.Text(decks[c][g.rng.Intn(len(decks[c]))])
	}
	if survived {
		row[13] = dataset.Text("yes")
	} else {
		row[13] = dataset.Text("no")
	}
	row[14] = dataset.Bool(alone)
	return row
}

func (g *TitanicGenerator) age(c int) (float64, bool) {
	if g.rng.Float64() < ageMissing[c] {
		return 0, false
	}
	a := ageMean[c] + g.rng.NormFloat64()*14
	if a < 0.42 {
		a = 0.42 + g.rng.Float64()*4
	}
	if a > 80 {
		a = 80
	}
	if a >= 1 {
		a = math.Round(a)
	} else {
		a = math.Round(a*100) / 100
	}
	return a, true
}

// smallCount draws a sibling or parent count: zero, one, or a short tail
func (g *TitanicGenerator) smallCount(pZero, pOne float64) int {
	r := g.rng.Float64()
	switch {
	case r < pZero:
		return 0
	case r < pZero+pOne:
		return 1
	default:
		return 2 + g.rng.Intn(3)
	}
}

func (g *TitanicGenerator) port(c int) string {
	r := g.rng.Float64()
	switch {
	case r < 0.0025:
		return ""
	case c == 0 && r < 0.40:
		return "C"
	case c == 2 && r < 0.16:
		return "Q"
	case r < 0.12:
		return "C"
	default:
		return "S"
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
