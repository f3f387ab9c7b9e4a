package fmap

import (
	"errors"
	"log/slog"

	"github.com/lcacommons/lciafmt/internal/options"
	"github.com/lcacommons/lciafmt/table"
)

// Stats reports the outcome of a mapping run. The three outcome counts
// are mutually exclusive and exhaustive: Input == Mapped + Preserved +
// Dropped always holds.
type Stats struct {
	// Input is the number of factor rows fed into the run.
	Input int

	// Mapped is the number of rows matched and rewritten to canonical flows.
	Mapped int

	// Preserved is the number of unmatched rows kept unchanged
	// (preserve-unmapped enabled).
	Preserved int

	// Dropped is the number of unmatched rows discarded
	// (preserve-unmapped disabled).
	Dropped int
}

// Mapper joins a factor table against a mapping relation.
//
// A Mapper is configured for one run over one table; it is not safe for
// concurrent use. Stats are available after Run returns.
type Mapper struct {
	source *table.Table

	system           string
	mappingRows      []MappingRow
	relation         *Relation
	preserveUnmapped bool
	caseInsensitive  bool
	logger           *slog.Logger

	stats Stats
}

// Option is a functional option for configuring a Mapper.
type Option = options.Option[*Mapper]

// WithSystem selects a registered mapping system by name.
func WithSystem(name string) Option {
	return options.NoError(func(m *Mapper) {
		m.system = name
	})
}

// WithMapping supplies an explicit mapping table instead of a named
// system. Rows parsed by ReadMappingCSV satisfy the required-column
// contract; rows constructed in code are the caller's responsibility.
func WithMapping(rows []MappingRow) Option {
	return options.NoError(func(m *Mapper) {
		m.mappingRows = rows
	})
}

// WithRelation supplies an already-built Relation, bypassing load-time
// configuration. The relation's own case sensitivity applies.
func WithRelation(r *Relation) Option {
	return options.NoError(func(m *Mapper) {
		m.relation = r
	})
}

// WithPreserveUnmapped keeps rows with no mapping match in the output,
// flagged as preserved. When disabled (the default), unmatched rows are
// dropped and counted.
func WithPreserveUnmapped(preserve bool) Option {
	return options.NoError(func(m *Mapper) {
		m.preserveUnmapped = preserve
	})
}

// WithCaseInsensitive lower-cases source flow names at relation load time
// and at every lookup.
func WithCaseInsensitive(insensitive bool) Option {
	return options.NoError(func(m *Mapper) {
		m.caseInsensitive = insensitive
	})
}

// WithLogger sets the logger for run summaries. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(m *Mapper) {
		m.logger = logger
	})
}

// NewMapper creates a Mapper over the given factor table.
//
// Exactly one mapping source must be configured: a named system, an
// explicit mapping table, or a pre-built relation.
func NewMapper(t *table.Table, opts ...Option) (*Mapper, error) {
	m := &Mapper{source: t}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	configured := 0
	if m.system != "" {
		configured++
	}
	if m.mappingRows != nil {
		configured++
	}
	if m.relation != nil {
		configured++
	}
	if configured != 1 {
		return nil, errors.New("exactly one of a mapping system, an explicit mapping table, or a relation must be configured")
	}

	return m, nil
}

// Run executes the mapping join and returns the mapped table.
//
// Output row order follows input row order; mapped factors carry the
// conversion multiplication at full float64 precision with no rounding.
func (m *Mapper) Run() (*table.Table, error) {
	relation := m.relation
	if relation == nil {
		if m.system != "" {
			loaded, err := LoadRelation(m.system, m.caseInsensitive)
			if err != nil {
				return nil, err
			}
			relation = loaded
		} else {
			relation = NewRelation(m.mappingRows, m.caseInsensitive)
		}
	}

	out := table.NewWithCapacity(m.source.Len())
	m.stats = Stats{Input: m.source.Len()}

	for _, row := range m.source.Rows() {
		target, ok := relation.Lookup(row.Flowable, row.Context)
		if !ok {
			if m.preserveUnmapped {
				preserved := row
				preserved.Provenance = table.ProvenancePreserved
				out.Append(preserved)
				m.stats.Preserved++
			} else {
				m.stats.Dropped++
			}
			continue
		}

		mapped := row
		mapped.Flowable = target.Flowable
		mapped.Context = target.Context
		mapped.Factor = row.Factor * target.Factor
		mapped.Provenance = table.ProvenanceMapped
		out.Append(mapped)
		m.stats.Mapped++
	}

	m.logger.Info("flow mapping complete",
		slog.Int("input", m.stats.Input),
		slog.Int("mapped", m.stats.Mapped),
		slog.Int("preserved", m.stats.Preserved),
		slog.Int("dropped", m.stats.Dropped),
	)

	return out, nil
}

// Stats returns the counts of the last Run. Zero values before Run.
func (m *Mapper) Stats() Stats {
	return m.stats
}
