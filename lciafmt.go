// Package lciafmt standardizes life-cycle impact assessment (LCIA) method
// data and optionally re-expresses each method's elementary flows in a
// canonical flow vocabulary.
//
// Raw method tables come from format-specific sources registered with
// RegisterSource; the canonical mapping tables come from mapping-system
// providers registered with fmap.RegisterSystem. Given both, the package
// maps a method's flows, consolidates colliding indicators, and caches
// the result as a columnar artifact so the mapping step runs at most once
// per method.
//
// Basic usage:
//
//	lciafmt.RegisterSource("TRACI", traciSource)
//	fmap.RegisterSystem("TRACI2.1", traciMapping)
//
//	tbl, err := lciafmt.GetMappedMethod("TRACI 2.1")
//	if err != nil {
//	    return err
//	}
//
// This package provides convenient top-level wrappers; for fine-grained
// control use the fmap, consolidate, endpoint, and cache packages
// directly.
package lciafmt

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/lcacommons/lciafmt/cache"
	"github.com/lcacommons/lciafmt/consolidate"
	"github.com/lcacommons/lciafmt/endpoint"
	"github.com/lcacommons/lciafmt/errs"
	"github.com/lcacommons/lciafmt/fmap"
	"github.com/lcacommons/lciafmt/internal/options"
	"github.com/lcacommons/lciafmt/method"
	"github.com/lcacommons/lciafmt/table"
)

// Source supplies the raw factor table of a method in the standard
// schema. Format-specific extraction (spreadsheets, archives, downloads)
// lives behind this interface.
type Source func(rec method.Record) (*table.Table, error)

var (
	sourcesMu sync.RWMutex
	sources   = make(map[string]Source)
)

// RegisterSource registers the raw-table source for a method ID,
// replacing any previous registration.
func RegisterSource(methodID string, src Source) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources[methodID] = src
}

var (
	cacheMu      sync.Mutex
	processCache *cache.Cache
)

// Cache returns the process-wide method cache, creating it with defaults
// on first use.
func Cache() *cache.Cache {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if processCache == nil {
		c, err := cache.New()
		if err != nil {
			// cache.New without options cannot fail; keep the invariant
			// visible.
			panic(err)
		}
		processCache = c
	}

	return processCache
}

// SetCache replaces the process-wide method cache. Intended for tools
// that configure a custom cache directory or compression.
func SetCache(c *cache.Cache) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	processCache = c
}

// SupportedMethods returns the metadata records of all supported methods.
func SupportedMethods() []method.Record {
	return method.All()
}

// SupportedMappingSystems returns the registered mapping-system names.
func SupportedMappingSystems() []string {
	return fmap.SupportedSystems()
}

// MapFlows maps the flows in a method table using a mapping system or an
// explicit mapping table; see the fmap options for configuration.
func MapFlows(t *table.Table, opts ...fmap.Option) (*table.Table, error) {
	mapper, err := fmap.NewMapper(t, opts...)
	if err != nil {
		return nil, err
	}

	return mapper.Run()
}

// CollapseIndicators merges rows that collide on (Method, Indicator,
// Flowable, Context, Unit) after mapping, summing their factors.
func CollapseIndicators(t *table.Table) *table.Table {
	return consolidate.Collapse(t)
}

// ClearCache deletes all stored methods in the local cache.
func ClearCache() error {
	return Cache().Clear()
}

// cacheKey derives the cache storage key of a method: its category
// folder plus the storage-safe file stem, so cached artifacts mirror
// the layout of locally stored method data.
func cacheKey(rec method.Record) string {
	return rec.Path + "/" + rec.Filename()
}

type mappedQuery struct {
	indicators []string
	methods    []string
	logger     *slog.Logger
}

// MethodOption configures GetMappedMethod.
type MethodOption = options.Option[*mappedQuery]

// WithIndicators restricts the returned table to the named indicators.
func WithIndicators(names ...string) MethodOption {
	return options.NoError(func(q *mappedQuery) {
		q.indicators = names
	})
}

// WithMethods restricts the returned table to the named method versions.
// Applies only to methods with multiple versions.
func WithMethods(names ...string) MethodOption {
	return options.NoError(func(q *mappedQuery) {
		q.methods = names
	})
}

// WithQueryLogger sets the logger used for empty-result reporting.
func WithQueryLogger(logger *slog.Logger) MethodOption {
	return options.NoError(func(q *mappedQuery) {
		q.logger = logger
	})
}

// GetMappedMethod returns a method with mapped flows, generating and
// caching it on first request.
//
// The method may be identified by registry ID, display name,
// mapping-system name, or sub-method key. Methods without a configured
// mapping system are cached as supplied by their source.
//
// A filter that matches nothing is recoverable: the empty table is
// returned and the condition is logged, never an error.
func GetMappedMethod(methodID string, opts ...MethodOption) (*table.Table, error) {
	q := &mappedQuery{}
	if err := options.Apply(q, opts...); err != nil {
		return nil, err
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}

	rec, ok := method.Find(methodID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownMethod, methodID)
	}

	mapped, err := Cache().GetOrCompute(cacheKey(rec), func() (*table.Table, error) {
		return generateMapped(rec)
	})
	if err != nil {
		return nil, err
	}

	result := mapped
	if q.indicators != nil {
		result = result.FilterIndicators(q.indicators)
		if result.Len() == 0 {
			q.logger.Warn("indicator not found",
				slog.String("method", rec.Name),
				slog.Any("indicators", q.indicators),
			)
		}
	}
	if q.methods != nil {
		result = result.FilterMethods(q.methods)
		if result.Len() == 0 {
			q.logger.Warn("specified method not found",
				slog.String("method", rec.Name),
				slog.Any("methods", q.methods),
			)
		}
	}

	if result == mapped {
		// Never hand the caller the cached table itself.
		result = mapped.Clone()
	}

	return result, nil
}

// generateMapped produces the cacheable table for a method: the raw
// source table, flow-mapped and consolidated when the method has a
// mapping system configured.
func generateMapped(rec method.Record) (*table.Table, error) {
	sourcesMu.RLock()
	src, ok := sources[rec.ID]
	sourcesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrNoSource, rec.ID)
	}

	raw, err := src(rec)
	if err != nil {
		return nil, fmt.Errorf("get method %q: %w", rec.Name, err)
	}

	if !rec.HasMapping() {
		return raw, nil
	}

	mapped, err := MapFlows(raw,
		fmap.WithSystem(rec.Mapping),
		fmap.WithCaseInsensitive(rec.CaseInsensitive),
	)
	if err != nil {
		return nil, err
	}

	return consolidate.Collapse(mapped), nil
}

// SupportedIndicators returns the distinct indicators of a cached mapped
// method, in first-seen order. It does not generate the method: a method
// that has never been cached yields a nil slice.
func SupportedIndicators(methodID string) ([]string, error) {
	rec, ok := method.Find(methodID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownMethod, methodID)
	}

	t, present, err := Cache().Read(cacheKey(rec))
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	return t.Indicators(), nil
}

// GenerateEndpoints expands a midpoint table into an endpoint method
// using a conversion spec read from specReader; see endpoint.Generate.
func GenerateEndpoints(midpoint *table.Table, specReader io.Reader, name string, matchingFields []string) (*table.Table, endpoint.Stats, error) {
	return endpoint.Generate(midpoint, specReader, name, matchingFields)
}
