// Package table defines the standard tabular schema for LCIA method data.
//
// A Table is an ordered collection of characterization-factor rows in the
// standard column layout (Method, Indicator, Indicator unit, Flowable,
// Context, Unit, CAS Number, Factor, Location). Row order is preserved by
// every transform in this module, which makes first-wins merge rules
// reproducible.
package table

// Provenance records how a row relates to the canonical flow vocabulary.
type Provenance uint8

const (
	// ProvenanceUnmapped marks a row as published by the method source;
	// no flow mapping has been applied.
	ProvenanceUnmapped Provenance = iota

	// ProvenanceMapped marks a row whose Flowable/Context were replaced by
	// a canonical flow and whose Factor carries the unit conversion.
	ProvenanceMapped

	// ProvenancePreserved marks a row that had no mapping match and was
	// kept unchanged because the mapper ran with preserve-unmapped.
	ProvenancePreserved
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceUnmapped:
		return "unmapped"
	case ProvenanceMapped:
		return "mapped"
	case ProvenancePreserved:
		return "preserved"
	default:
		return "unknown"
	}
}

// Row is a single characterization factor in the standard schema.
//
// CASNumber and Location are optional; an empty string means absent.
type Row struct {
	Method        string
	Indicator     string
	IndicatorUnit string
	Flowable      string
	Context       string
	Unit          string
	CASNumber     string
	Factor        float64
	Location      string
	Provenance    Provenance
}

// Table is an ordered list of rows. Uniqueness on any key is not
// guaranteed until consolidation collapses duplicates.
type Table struct {
	rows []Row
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// NewWithCapacity creates an empty table with room for n rows.
func NewWithCapacity(n int) *Table {
	return &Table{rows: make([]Row, 0, n)}
}

// FromRows creates a table that takes ownership of the given rows.
func FromRows(rows []Row) *Table {
	return &Table{rows: rows}
}

// Append adds rows to the end of the table, preserving their order.
func (t *Table) Append(rows ...Row) {
	t.rows = append(t.rows, rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying row slice.
// The slice is shared with the table; callers must not modify it while the
// table is in use elsewhere.
func (t *Table) Rows() []Row {
	return t.rows
}

// Row returns the row at index i.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)

	return &Table{rows: rows}
}

// Indicators returns the distinct indicator names in first-seen order.
func (t *Table) Indicators() []string {
	seen := make(map[string]struct{}, 16)
	var out []string
	for i := range t.rows {
		name := t.rows[i].Indicator
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}

// Methods returns the distinct method names in first-seen order.
func (t *Table) Methods() []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for i := range t.rows {
		name := t.rows[i].Method
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}

// FilterIndicators returns the rows whose Indicator is in names,
// preserving row order. An empty result is not an error; callers decide
// whether to report it.
func (t *Table) FilterIndicators(names []string) *Table {
	return t.filter(names, func(r *Row) string { return r.Indicator })
}

// FilterMethods returns the rows whose Method is in names, preserving
// row order.
func (t *Table) FilterMethods(names []string) *Table {
	return t.filter(names, func(r *Row) string { return r.Method })
}

func (t *Table) filter(names []string, key func(*Row) string) *Table {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	out := New()
	for i := range t.rows {
		if _, ok := want[key(&t.rows[i])]; ok {
			out.Append(t.rows[i])
		}
	}

	return out
}

// Equal reports whether two tables contain the same rows, ignoring order.
// Duplicate rows are counted, so a table with a row twice is not equal to
// one holding it once.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() {
		return false
	}

	counts := make(map[Row]int, t.Len())
	for i := range t.rows {
		counts[t.rows[i]]++
	}
	for i := range other.rows {
		counts[other.rows[i]]--
		if counts[other.rows[i]] < 0 {
			return false
		}
	}

	return true
}
