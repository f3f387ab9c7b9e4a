// Package method defines the fixed registry of supported LCIA methods.
//
// The registry is a static table of immutable records loaded once from
// embedded metadata. Records can be found by any of several equivalent
// keys through a multi-key index built at first use; lookup precedence is
// documented on Find.
package method

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

//go:embed data/methods.json
var methodsJSON []byte

// Record holds the metadata of one supported method. Records are
// immutable; the registry hands out copies.
type Record struct {
	// ID is the canonical registry key, e.g. "TRACI".
	ID string `json:"id"`

	// Name is the display name, e.g. "TRACI 2.1".
	Name string `json:"name"`

	// Path is the category folder name used for local storage.
	Path string `json:"path"`

	// Mapping names the flow-mapping system for this method; empty when
	// the method ships already aligned to the canonical vocabulary.
	Mapping string `json:"mapping,omitempty"`

	// CaseInsensitive selects case-insensitive source-flow matching
	// during mapping.
	CaseInsensitive bool `json:"case_insensitivity,omitempty"`

	// Methods maps sub-method keys to their display names for methods
	// with multiple versions, e.g. ReCiPe midpoint/endpoint variants.
	Methods map[string]string `json:"methods,omitempty"`
}

// HasMapping reports whether a flow-mapping system is configured.
func (r Record) HasMapping() bool {
	return r.Mapping != ""
}

// Filename returns the storage-safe file stem for the method,
// derived from the display name with spaces replaced by underscores.
func (r Record) Filename() string {
	return strings.ReplaceAll(r.Name, " ", "_")
}

type registry struct {
	records   []Record
	byID      map[string]int
	byName    map[string]int
	byMapping map[string]int
	bySubKey  map[string]int
}

var (
	regOnce sync.Once
	reg     *registry
	regErr  error
)

func buildRegistry() (*registry, error) {
	var records []Record
	if err := json.Unmarshal(methodsJSON, &records); err != nil {
		return nil, fmt.Errorf("parse embedded method metadata: %w", err)
	}

	r := &registry{
		records:   records,
		byID:      make(map[string]int, len(records)),
		byName:    make(map[string]int, len(records)),
		byMapping: make(map[string]int, len(records)),
		bySubKey:  make(map[string]int, len(records)),
	}
	for i, rec := range records {
		r.byID[rec.ID] = i
		r.byName[rec.Name] = i
		if rec.Mapping != "" {
			r.byMapping[rec.Mapping] = i
		}
		for key := range rec.Methods {
			r.bySubKey[key] = i
		}
	}

	return r, nil
}

func getRegistry() (*registry, error) {
	regOnce.Do(func() {
		reg, regErr = buildRegistry()
	})

	return reg, regErr
}

// All returns the metadata records of every supported method, in
// registry order.
func All() []Record {
	r, err := getRegistry()
	if err != nil {
		// Embedded metadata is validated by tests; a parse failure here
		// is a build defect.
		panic(err)
	}
	out := make([]Record, len(r.records))
	copy(out, r.records)

	return out
}

// Find resolves a method by any equivalent key. Keys are checked in
// precedence order: registry ID, display name, mapping-system name,
// sub-method key. The first index that contains the key wins; later
// indexes are not consulted.
func Find(key string) (Record, bool) {
	r, err := getRegistry()
	if err != nil {
		panic(err)
	}

	for _, idx := range []map[string]int{r.byID, r.byName, r.byMapping, r.bySubKey} {
		if i, ok := idx[key]; ok {
			return r.records[i], true
		}
	}

	return Record{}, false
}

// MappingSystems returns the distinct mapping-system names configured
// across all methods, in registry order.
func MappingSystems() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, rec := range All() {
		if rec.Mapping == "" {
			continue
		}
		if _, ok := seen[rec.Mapping]; ok {
			continue
		}
		seen[rec.Mapping] = struct{}{}
		out = append(out, rec.Mapping)
	}

	return out
}
