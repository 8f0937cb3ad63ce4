package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/sample"
)

const sampleScheme = "sample:"

// SampleURI names the built-in passenger table
const SampleURI = sampleScheme + "titanic"

// SampleLoader serves the generated datasets
type SampleLoader struct{}

// NewSampleLoader creates a sample loader
func NewSampleLoader() *SampleLoader { return &SampleLoader{} }

// Name returns the loader name
func (l *SampleLoader) Name() string { return "sample" }

// CanOpen accepts sample: URIs
func (l *SampleLoader) CanOpen(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), sampleScheme)
}

// Open generates the named sample
func (l *SampleLoader) Open(_ context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.ToLower(uri), sampleScheme))
	if name != "titanic" {
		return nil, fmt.Errorf("%w: unknown sample %q", ErrUnsupportedSource, name)
	}

	cfg := sample.DefaultTitanicConfig()
	if opts.MaxRows > 0 && opts.MaxRows < cfg.Passengers {
		cfg.Passengers = opts.MaxRows
	}
	return sample.NewTitanicGenerator(cfg).Generate()
}
