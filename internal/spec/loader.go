// Package spec fetches and parses the OpenAPI document describing the
// wrapped HTTP API. The document is read-only after load.
package spec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/apibridge/apibridge/internal/apierr"
	"github.com/apibridge/apibridge/internal/cache"
	"github.com/apibridge/apibridge/internal/common"
)

// maxSpecSize caps the specification document size (10MB).
const maxSpecSize = 10 << 20

// Loader fetches specification documents through the reference cache.
type Loader struct {
	refCache   *cache.ResponseCache
	ttl        time.Duration
	httpClient *http.Client
	logger     *common.Logger
}

// NewLoader creates a Loader. refCache may be nil to fetch uncached.
func NewLoader(refCache *cache.ResponseCache, ttl time.Duration, logger *common.Logger) *Loader {
	return &Loader{
		refCache:   refCache,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Load fetches the document from an http(s) URL or local file path, parses
// it, and enforces the startup invariant: a document without paths is
// invalid and the error is fatal to the caller.
func (l *Loader) Load(ctx context.Context, source string) (*openapi3.T, error) {
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, apierr.SpecificationInvalid("failed to parse specification from %s: %v", source, err)
	}

	if doc.Paths == nil || len(doc.Paths.Map()) == 0 {
		return nil, apierr.SpecificationInvalid("specification at %s has no paths", source)
	}

	l.logger.Info().
		Str("source", source).
		Int("paths", len(doc.Paths.Map())).
		Msg("specification loaded")

	return doc, nil
}

// fetch retrieves the raw document bytes, caching them under a key derived
// from the source so repeated startups within the TTL reuse the fetch.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if l.refCache == nil {
		return l.fetchDirect(ctx, source)
	}

	key := cache.GenerateKey(http.MethodGet, source, nil)
	v, err := l.refCache.GetOrFetch(ctx, key, l.ttl, func(ctx context.Context) (any, error) {
		raw, err := l.fetchDirect(ctx, source)
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// fetchDirect reads the document from the network or the filesystem.
func (l *Loader) fetchDirect(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, apierr.SpecificationInvalid("invalid specification URL %s: %v", source, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, apierr.SpecificationInvalid("failed to fetch specification from %s: %v", source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, apierr.SpecificationInvalid("specification fetch from %s returned %d", source, resp.StatusCode)
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSpecSize))
		if err != nil {
			return nil, apierr.SpecificationInvalid("failed to read specification from %s: %v", source, err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, apierr.SpecificationInvalid("failed to read specification file %s: %v", source, err)
	}
	if len(raw) > maxSpecSize {
		return nil, apierr.SpecificationInvalid("specification file %s too large: %d bytes", source, len(raw))
	}
	return raw, nil
}

// Describe summarizes a parsed document for startup logging.
func Describe(doc *openapi3.T) string {
	title := "untitled"
	version := ""
	if doc.Info != nil {
		if doc.Info.Title != "" {
			title = doc.Info.Title
		}
		version = doc.Info.Version
	}
	return fmt.Sprintf("%s %s (%d paths)", title, version, len(doc.Paths.Map()))
}
