package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/pkg/httpclient"
	"github.com/helloivanco/fanrc/pkg/tracing"
)

const (
	tracerName = "github.com/helloivanco/fanrc/internal/catalog"

	// maxCatalogBytes bounds remote catalog downloads.
	maxCatalogBytes = 64 << 20
)

// Loader fetches the raw product list from its source.
type Loader interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Source() string
}

// FileLoader reads the catalog from a JSON file.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the given path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Source returns the file path.
func (l *FileLoader) Source() string { return l.Path }

// Load reads and decodes the catalog file.
func (l *FileLoader) Load(ctx context.Context) (products []domain.Product, err error) {
	_, span := tracing.Start(ctx, tracerName, "catalog.load_file", attribute.String("catalog.path", l.Path))
	defer func() { err = tracing.RecordError(span, err); span.End() }()

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Decode(data)
}

// HTTPLoader fetches the catalog from a URL through a circuit breaker.
type HTTPLoader struct {
	URL    string
	client *httpclient.CircuitBreakerClient
}

// NewHTTPLoader creates a loader for the given URL.
func NewHTTPLoader(url string, client *httpclient.CircuitBreakerClient) *HTTPLoader {
	return &HTTPLoader{URL: url, client: client}
}

// Source returns the URL.
func (l *HTTPLoader) Source() string { return l.URL }

// Load downloads and decodes the catalog.
func (l *HTTPLoader) Load(ctx context.Context) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "catalog.load_url", attribute.String("catalog.url", l.URL))
	defer func() { err = tracing.RecordError(span, err); span.End() }()

	resp, err := l.client.Get(ctx, l.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	if len(data) > maxCatalogBytes {
		return nil, fmt.Errorf("catalog exceeds %d bytes", maxCatalogBytes)
	}
	return Decode(data)
}

// Decode parses a catalog document. Both a bare JSON array of products and
// an object of the form {"products": [...]} are accepted.
func Decode(data []byte) ([]domain.Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("decode catalog: empty document")
	}

	if data[0] == '{' {
		var doc struct {
			Products []domain.Product `json:"products"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		if doc.Products == nil {
			return nil, errors.New(`decode catalog: object has no "products" array`)
		}
		return doc.Products, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}
