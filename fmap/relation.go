// Package fmap maps the elementary flows of an LCIA method onto a
// canonical flow vocabulary.
//
// A mapping system is supplied as data, either registered under a name or
// passed directly as a mapping table. The Mapper joins a factor table
// against the loaded Relation, replacing each matched flow with its
// canonical name and context and converting the factor into the canonical
// unit. Unmapped rows are preserved or dropped per configuration; either
// way they are counted and queryable after the run.
package fmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lcacommons/lciafmt/errs"
)

// Mapping table column names, per the canonical flow-list mapping file
// contract.
const (
	ColSourceFlowName    = "SourceFlowName"
	ColSourceFlowContext = "SourceFlowContext"
	ColTargetFlowName    = "TargetFlowName"
	ColTargetFlowContext = "TargetFlowContext"
	ColConversionFactor  = "ConversionFactor"
)

// requiredMappingColumns is the column set an explicit mapping table must
// supply.
var requiredMappingColumns = []string{
	ColSourceFlowName, ColSourceFlowContext, ColTargetFlowName,
	ColTargetFlowContext, ColConversionFactor,
}

// wildcardContext marks a mapping entry that applies to a source flow in
// any context. An empty SourceFlowContext means the same thing.
const wildcardContext = "*"

// MappingRow is one tuple of a mapping table: a method-native flow and
// the canonical flow it converts to.
type MappingRow struct {
	SourceFlowName    string
	SourceFlowContext string
	TargetFlowName    string
	TargetFlowContext string
	ConversionFactor  float64
}

// Target is the canonical side of a matched mapping entry.
type Target struct {
	Flowable string
	Context  string
	Factor   float64
}

type relKey struct {
	flow    string
	context string
}

// Relation is the immutable in-memory lookup built from a mapping table.
//
// Entries keyed on a specific (flow, context) take precedence over
// context-agnostic (flow, *) entries. When built case-insensitive, source
// keys are lower-cased at load time and every lookup normalizes its query
// the same way; both sides must go through the same normalization or
// lookups silently miss.
type Relation struct {
	entries         map[relKey]Target
	caseInsensitive bool
}

// NewRelation builds a Relation from mapping rows.
//
// Duplicate source keys keep the first entry seen; mapping tables are
// expected to be unique on the source side, and first-wins keeps the
// outcome deterministic when they are not.
func NewRelation(rows []MappingRow, caseInsensitive bool) *Relation {
	r := &Relation{
		entries:         make(map[relKey]Target, len(rows)),
		caseInsensitive: caseInsensitive,
	}
	for i := range rows {
		key := r.sourceKey(rows[i].SourceFlowName, rows[i].SourceFlowContext)
		if _, ok := r.entries[key]; ok {
			continue
		}
		r.entries[key] = Target{
			Flowable: rows[i].TargetFlowName,
			Context:  rows[i].TargetFlowContext,
			Factor:   rows[i].ConversionFactor,
		}
	}

	return r
}

func (r *Relation) sourceKey(flow, context string) relKey {
	if r.caseInsensitive {
		flow = strings.ToLower(flow)
	}
	if context == "" {
		context = wildcardContext
	}

	return relKey{flow: flow, context: context}
}

// Lookup resolves a method-native (flowable, context) pair. A
// context-specific entry wins; otherwise the context-agnostic entry for
// the flow is used. The second return is false when neither exists.
func (r *Relation) Lookup(flowable, context string) (Target, bool) {
	if target, ok := r.entries[r.sourceKey(flowable, context)]; ok {
		return target, true
	}
	if context == wildcardContext || context == "" {
		return Target{}, false
	}
	target, ok := r.entries[r.sourceKey(flowable, wildcardContext)]

	return target, ok
}

// Len returns the number of distinct source keys in the relation.
func (r *Relation) Len() int {
	return len(r.entries)
}

// CaseInsensitive reports whether source keys were lower-cased at load.
func (r *Relation) CaseInsensitive() bool {
	return r.caseInsensitive
}

// Provider supplies the mapping rows of a named mapping system. The
// canonical flow list itself is external; providers are registered by the
// collaborator that ships or downloads it.
type Provider func() ([]MappingRow, error)

var (
	systemsMu sync.RWMutex
	systems   = make(map[string]Provider)
)

// RegisterSystem registers a provider under a mapping-system name,
// replacing any previous registration for the same name.
func RegisterSystem(name string, provider Provider) {
	systemsMu.Lock()
	defer systemsMu.Unlock()
	systems[name] = provider
}

// SupportedSystems returns the registered mapping-system names, sorted.
func SupportedSystems() []string {
	systemsMu.RLock()
	defer systemsMu.RUnlock()

	out := make([]string, 0, len(systems))
	for name := range systems {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// LoadRelation resolves a named mapping system into a Relation.
// The provider is invoked on every call; Relation construction is cheap
// next to the mapping run and providers may cache internally.
func LoadRelation(system string, caseInsensitive bool) (*Relation, error) {
	systemsMu.RLock()
	provider, ok := systems[system]
	systemsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownMappingSystem, system)
	}

	rows, err := provider()
	if err != nil {
		return nil, fmt.Errorf("load mapping system %q: %w", system, err)
	}

	return NewRelation(rows, caseInsensitive), nil
}

// ReadMappingCSV parses an explicit mapping table from CSV data,
// validating it against the required mapping column set. A missing
// required column fails with a SchemaError.
func ReadMappingCSV(r io.Reader) ([]MappingRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read mapping table header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var missing []string
	for _, name := range requiredMappingColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewSchemaError("mapping table", missing)
	}

	field := func(record []string, name string) string {
		i := idx[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []MappingRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mapping table: %w", err)
		}
		line++

		factor, err := strconv.ParseFloat(field(record, ColConversionFactor), 64)
		if err != nil {
			return nil, fmt.Errorf("mapping table line %d: parse conversion factor: %w", line, err)
		}

		rows = append(rows, MappingRow{
			SourceFlowName:    field(record, ColSourceFlowName),
			SourceFlowContext: field(record, ColSourceFlowContext),
			TargetFlowName:    field(record, ColTargetFlowName),
			TargetFlowContext: field(record, ColTargetFlowContext),
			ConversionFactor:  factor,
		})
	}

	return rows, nil
}
