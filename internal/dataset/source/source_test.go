package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yildizm/DataSum/internal/dataset"
)

const passengersCSV = `survived,pclass,sex,age,embarked
0,3,male,22,S
1,1,female,38,C
1,3,female,,S
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpenCSV(t *testing.T) {
	path := writeFile(t, "passengers.csv", passengersCSV)

	ds, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "passengers", ds.Name())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"survived", "pclass", "sex", "age", "embarked"}, ds.ColumnNames())
	assert.True(t, ds.Value(2, "age").IsMissing())

	col, _ := ds.Column("age")
	assert.Equal(t, dataset.KindNumeric, col.Kind)
}

func TestOpenTSVAndMaxRows(t *testing.T) {
	path := writeFile(t, "passengers.tsv", strings.ReplaceAll(passengersCSV, ",", "\t"))

	ds, err := Open(context.Background(), path, Options{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "female", ds.Value(1, "sex").String())
}

func TestOpenStdin(t *testing.T) {
	ds, err := Open(context.Background(), "-", Options{Stdin: strings.NewReader(passengersCSV)})
	require.NoError(t, err)
	assert.Equal(t, "stdin", ds.Name())
	assert.Equal(t, 3, ds.Len())
}

func TestReadCSVOverrides(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(passengersCSV), "p", Options{
		Overrides: map[string]dataset.Kind{"survived": dataset.KindBoolean},
	})
	require.NoError(t, err)

	col, _ := ds.Column("survived")
	assert.Equal(t, dataset.KindBoolean, col.Kind)
	b, ok := ds.Bool(1, "survived")
	assert.True(t, ok)
	assert.True(t, b)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty", Options{})
	assert.Error(t, err)
}

func TestOpenJSONArray(t *testing.T) {
	path := writeFile(t, "people.json", `[
		{"name": "Braund", "age": 22, "alone": false},
		{"name": "Cumings", "age": null, "alone": true, "deck": "C"}
	]`)

	ds, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "alone", "deck"}, ds.ColumnNames(), "key order follows first appearance")
	assert.Equal(t, 2, ds.Len())
	assert.True(t, ds.Value(1, "age").IsMissing())
	assert.True(t, ds.Value(0, "deck").IsMissing())

	col, _ := ds.Column("alone")
	assert.Equal(t, dataset.KindBoolean, col.Kind)
}

func TestOpenNDJSON(t *testing.T) {
	path := writeFile(t, "people.ndjson", "{\"a\": 1, \"b\": \"x\"}\n{\"a\": 2.5, \"b\": \"y\"}\n{\"a\": 3, \"b\": \"z\"}\n")

	ds, err := Open(context.Background(), path, Options{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	f, ok := ds.Numeric(1, "a")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
}

func TestReadJSONRejectsScalars(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`42`), "x", Options{})
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`[1, 2]`), "x", Options{})
	assert.Error(t, err)
}

func TestOpenXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"pclass", "fare"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 71.2833}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{3, 7.25}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "book", ds.Name())
	assert.Equal(t, 2, ds.Len())

	fare, ok := ds.Numeric(1, "fare")
	assert.True(t, ok)
	assert.InDelta(t, 7.25, fare, 1e-9)

	_, err = Open(context.Background(), path+"#Missing", Options{})
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.db")

	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE passengers (survived INTEGER, sex TEXT, age REAL)`)
	db.MustExec(`INSERT INTO passengers VALUES (0, 'male', 22), (1, 'female', NULL), (1, 'female', 35)`)
	require.NoError(t, db.Close())

	ds, err := Open(context.Background(), "sqlite://"+path+"?table=passengers", Options{})
	require.NoError(t, err)

	assert.Equal(t, "passengers", ds.Name())
	assert.Equal(t, 3, ds.Len())
	assert.True(t, ds.Value(1, "age").IsMissing())
	assert.Equal(t, "female", ds.Value(2, "sex").String())

	ds, err = Open(context.Background(), "sqlite://"+path+"?table=passengers", Options{MaxRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestParseSQLURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		driver  string
		dsn     string
		table   string
		wantErr bool
	}{
		{
			name:   "postgres",
			uri:    "postgres://u:p@localhost:5432/db?sslmode=disable&table=passengers",
			driver: "postgres",
			dsn:    "postgres://u:p@localhost:5432/db?sslmode=disable",
			table:  "passengers",
		},
		{
			name:   "sqlite absolute",
			uri:    "sqlite:///var/data/t.db?table=public_t",
			driver: "sqlite",
			dsn:    "/var/data/t.db",
			table:  "public_t",
		},
		{name: "missing table", uri: "sqlite:///t.db", wantErr: true},
		{name: "injection", uri: "sqlite:///t.db?table=t;DROP", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, table, err := parseSQLURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
			assert.Equal(t, tt.table, table)
		})
	}
}

func TestOpenLogFile(t *testing.T) {
	path := writeFile(t, "app.log", `{"timestamp":"2024-01-15T10:30:00Z","level":"ERROR","message":"database timeout"}
{"timestamp":"2024-01-15T10:31:00Z","level":"INFO","message":"retry ok"}
`)

	ds, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "level", "message"}, ds.ColumnNames())
	assert.Equal(t, 2, ds.Len())
}

func TestOpenSample(t *testing.T) {
	ds, err := Open(context.Background(), SampleURI, Options{})
	require.NoError(t, err)
	assert.Equal(t, 891, ds.Len())

	_, err = Open(context.Background(), "sample:iris", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), "data.parquet", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Open(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestOpenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, SampleURI, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t, []string{"sample", "sql", "xlsx", "json", "log", "csv"}, NewRegistry().Loaders())
}

func TestIsFile(t *testing.T) {
	assert.True(t, IsFile("data/titanic.csv"))
	assert.False(t, IsFile("-"))
	assert.False(t, IsFile(SampleURI))
	assert.False(t, IsFile("sqlite:///t.db?table=x"))
	assert.Equal(t, "book.xlsx", FilePath("book.xlsx#Sheet2"))
}
