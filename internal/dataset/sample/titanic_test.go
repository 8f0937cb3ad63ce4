package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DataSum/internal/dataset"
)

func TestTitanicShape(t *testing.T) {
	ds, err := Titanic()
	require.NoError(t, err)

	assert.Equal(t, 891, ds.Len())
	assert.Equal(t, "titanic", ds.Name())
	assert.Len(t, ds.Columns(), len(TitanicColumns))

	counts := map[string]int{}
	for r := 0; r < ds.Len(); r++ {
		counts[ds.Value(r, "pclass").String()]++
	}
	assert.Equal(t, map[string]int{"1": 216, "2": 184, "3": 491}, counts)
}

func TestTitanicValueDomains(t *testing.T) {
	ds, err := Titanic()
	require.NoError(t, err)

	missingAge := 0
	for r := 0; r < ds.Len(); r++ {
		sv, ok := ds.Value(r, "survived").Float()
		require.True(t, ok)
		assert.Contains(t, []float64{0, 1}, sv)

		alive := ds.Value(r, "alive").String()
		if sv == 1 {
			assert.Equal(t, "yes", alive)
		} else {
			assert.Equal(t, "no", alive)
		}

		assert.Contains(t, []string{"male", "female"}, ds.Value(r, "sex").String())
		assert.Contains(t, []string{"man", "woman", "child"}, ds.Value(r, "who").String())

		age := ds.Value(r, "age")
		if age.IsMissing() {
			missingAge++
		} else {
			a, _ := age.Float()
			assert.GreaterOrEqual(t, a, 0.42)
			assert.LessOrEqual(t, a, 80.0)
		}

		if e := ds.Value(r, "embarked"); !e.IsMissing() {
			assert.Contains(t, []string{"S", "C", "Q"}, e.String())
			assert.False(t, ds.Value(r, "embark_town").IsMissing())
		}

		fare, ok := ds.Value(r, "fare").Float()
		require.True(t, ok)
		assert.Greater(t, fare, 0.0)
	}

	assert.Greater(t, missingAge, 0, "some ages are unknown")
	assert.Less(t, missingAge, ds.Len()/2)

	col, _ := ds.Column("alone")
	assert.Equal(t, dataset.KindBoolean, col.Kind)
}

func TestTitanicDeterministic(t *testing.T) {
	a, err := NewTitanicGenerator(TitanicConfig{Passengers: 50, Seed: 7}).Generate()
	require.NoError(t, err)
	b, err := NewTitanicGenerator(TitanicConfig{Passengers: 50, Seed: 7}).Generate()
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for r := 0; r < a.Len(); r++ {
		ra, rb := a.Row(r), b.Row(r)
		for c := range ra {
			assert.True(t, ra[c].Equal(rb[c]), "row %d col %d", r, c)
		}
	}
}

func TestTitanicScaledSize(t *testing.T) {
	ds, err := NewTitanicGenerator(TitanicConfig{Passengers: 100, Seed: 1}).Generate()
	require.NoError(t, err)
	assert.Equal(t, 100, ds.Len())

	ds, err = NewTitanicGenerator(TitanicConfig{}).Generate()
	require.NoError(t, err)
	assert.Equal(t, 891, ds.Len(), "non-positive size falls back to the default")
}
