// Package consolidate collapses duplicate indicator rows after flow mapping.
//
// Mapping many native flows onto one canonical flow makes rows collide on
// the same indicator and flow. Their factors are additive: the mapping
// step already converted every factor into the canonical unit, so each
// colliding row is the contribution of one synonymous native flow.
package consolidate

import "github.com/lcacommons/lciafmt/table"

type groupKey struct {
	method    string
	indicator string
	flowable  string
	context   string
	unit      string
}

// Collapse merges rows that share (Method, Indicator, Flowable, Context,
// Unit) into a single row per group.
//
// Factors are summed. Non-numeric metadata (Indicator unit, CAS Number,
// Location) resolves first-non-empty-wins in input row order; since every
// transform in this module preserves row order, the winner is
// reproducible. Output groups appear in first-seen order.
//
// Collapse is idempotent: running it on already-collapsed output returns
// an equal table.
func Collapse(t *table.Table) *table.Table {
	grouped := make(map[groupKey]int, t.Len())
	out := table.NewWithCapacity(t.Len())

	for _, row := range t.Rows() {
		key := groupKey{
			method:    row.Method,
			indicator: row.Indicator,
			flowable:  row.Flowable,
			context:   row.Context,
			unit:      row.Unit,
		}

		idx, ok := grouped[key]
		if !ok {
			grouped[key] = out.Len()
			out.Append(row)
			continue
		}

		merged := &out.Rows()[idx]
		merged.Factor += row.Factor
		if merged.IndicatorUnit == "" {
			merged.IndicatorUnit = row.IndicatorUnit
		}
		if merged.CASNumber == "" {
			merged.CASNumber = row.CASNumber
		}
		if merged.Location == "" {
			merged.Location = row.Location
		}
	}

	return out
}
