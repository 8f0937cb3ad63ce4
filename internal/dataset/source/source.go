// Package source loads a dataset from a file, database table or the
// built-in sample. Loaders are selected by URI scheme or file extension.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yildizm/DataSum/internal/dataset"
)

// ErrUnsupportedSource is returned when no loader accepts a source URI
var ErrUnsupportedSource = errors.New("unsupported dataset source")

// Options tune how a source is read
type Options struct {
	// Overrides forces the kind of named columns instead of inferring it
	Overrides map[string]dataset.Kind
	// MaxRows stops reading after this many records; zero means no limit
	MaxRows int
	// Sheet selects the spreadsheet tab for workbook sources
	Sheet string
	// Delimiter overrides the field separator for delimited text
	Delimiter rune
	// Stdin is read when the source is "-"
	Stdin io.Reader
}

// Loader reads one family of sources
type Loader interface {
	// Name returns the loader name
	Name() string

	// CanOpen reports whether the loader handles the URI
	CanOpen(uri string) bool

	// Open reads the whole source into memory
	Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error)
}

// Registry selects a loader for a source URI
type Registry struct {
	loaders []Loader
	mu      sync.RWMutex
}

// DefaultRegistry has every built-in loader registered
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the built-in loaders
func NewRegistry() *Registry {
	r := &Registry{}

	// Order matters: scheme based loaders are tried before extensions
	r.Register(NewSampleLoader())
	r.Register(NewSQLLoader())
	r.Register(NewXLSXLoader())
	r.Register(NewJSONLoader())
	r.Register(NewLogLoader())
	r.Register(NewCSVLoader())

	return r
}

// Register adds a loader; later registrations are tried last
func (r *Registry) Register(l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders = append(r.loaders, l)
}

// Loaders returns the registered loader names in lookup order
func (r *Registry) Loaders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.loaders))
	for i, l := range r.loaders {
		names[i] = l.Name()
	}
	return names
}

// Open loads the dataset named by uri
func (r *Registry) Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	}

	r.mu.RLock()
	var loader Loader
	for _, l := range r.loaders {
		if l.CanOpen(uri) {
			loader = l
			break
		}
	}
	r.mu.RUnlock()

	if loader == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, uri)
	}

	ds, err := loader.Open(ctx, uri, opts)
	if err != nil {
		return nil, fmt.Errorf("%s source %s: %w", loader.Name(), uri, err)
	}
	return ds, nil
}

// Open loads a dataset with the default registry
func Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	return DefaultRegistry.Open(ctx, uri, opts)
}

// IsFile reports whether uri names a local file that can be watched
func IsFile(uri string) bool {
	if uri == "" || uri == "-" || strings.Contains(uri, "://") || strings.HasPrefix(uri, sampleScheme) {
		return false
	}
	return true
}

// FilePath strips loader fragments such as a sheet name from a file URI
func FilePath(uri string) string {
	if i := strings.LastIndex(uri, "#"); i > 0 {
		return uri[:i]
	}
	return uri
}

// datasetName derives a dataset name from a file path
func datasetName(path string) string {
	base := filepath.Base(FilePath(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hasExt(uri string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(FilePath(uri)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// limit truncates records to opts.MaxRows
func limit(records [][]string, maxRows int) [][]string {
	if maxRows > 0 && len(records) > maxRows {
		return records[:maxRows]
	}
	return records
}
