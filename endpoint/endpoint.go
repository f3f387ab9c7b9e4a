// Package endpoint expands midpoint indicators into endpoint indicators.
//
// An endpoint-conversion spec declares, per midpoint match, one or more
// endpoint indicators with conversion multipliers. Expansion is a derived,
// optional layer: midpoint rows without a spec match are dropped silently,
// but the drop count is reported so callers can observe coverage.
package endpoint

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lcacommons/lciafmt/errs"
	"github.com/lcacommons/lciafmt/table"
)

// Endpoint spec column names.
const (
	ColEndpointIndicator = "EndpointIndicator"
	ColEndpointUnit      = "EndpointUnit"
	ColConversionFactor  = "ConversionFactor"
)

// requiredSpecColumns is the minimum column set an endpoint spec table
// must supply. Matching-field columns (Method, Context, ...) are optional
// and only required when named in matchingFields.
var requiredSpecColumns = []string{
	table.ColIndicator, ColEndpointIndicator, ColEndpointUnit, ColConversionFactor,
}

// SpecRow is one endpoint-conversion entry: the midpoint match fields on
// the left, the endpoint indicator it expands into on the right.
type SpecRow struct {
	Method    string
	Indicator string
	Context   string

	EndpointIndicator string
	EndpointUnit      string
	ConversionFactor  float64
}

// DefaultMatchingFields joins on Indicator alone.
var DefaultMatchingFields = []string{table.ColIndicator}

// Stats reports the outcome of an expansion.
type Stats struct {
	// Input is the number of midpoint rows examined.
	Input int

	// Expanded is the number of endpoint rows produced. One midpoint row
	// can yield several endpoint rows.
	Expanded int

	// Dropped is the number of midpoint rows with no spec match.
	Dropped int
}

func rowField(r *table.Row, name string) (string, bool) {
	switch name {
	case table.ColMethod:
		return r.Method, true
	case table.ColIndicator:
		return r.Indicator, true
	case table.ColContext:
		return r.Context, true
	default:
		return "", false
	}
}

func specField(s *SpecRow, name string) (string, bool) {
	switch name {
	case table.ColMethod:
		return s.Method, true
	case table.ColIndicator:
		return s.Indicator, true
	case table.ColContext:
		return s.Context, true
	default:
		return "", false
	}
}

// Expand joins midpoint rows to endpoint spec rows on matchingFields and
// produces one endpoint row per matched spec entry, with the midpoint
// factor multiplied by the spec's conversion factor.
//
// A nil or empty matchingFields uses DefaultMatchingFields. Unsupported
// field names fail immediately. Output row order follows midpoint row
// order, with a midpoint row's expansions in spec order.
func Expand(midpoint *table.Table, spec []SpecRow, matchingFields []string) (*table.Table, Stats, error) {
	if len(matchingFields) == 0 {
		matchingFields = DefaultMatchingFields
	}
	for _, f := range matchingFields {
		if _, ok := specField(&SpecRow{}, f); !ok {
			return nil, Stats{}, fmt.Errorf("unsupported matching field: %q", f)
		}
	}

	// The join key is the concatenation of matching-field values. A unit
	// separator keeps distinct field tuples from colliding.
	const sep = "\x1f"
	specKey := func(s *SpecRow) string {
		parts := make([]string, len(matchingFields))
		for i, f := range matchingFields {
			parts[i], _ = specField(s, f)
		}
		return strings.Join(parts, sep)
	}
	midKey := func(r *table.Row) string {
		parts := make([]string, len(matchingFields))
		for i, f := range matchingFields {
			parts[i], _ = rowField(r, f)
		}
		return strings.Join(parts, sep)
	}

	bySpec := make(map[string][]int, len(spec))
	for i := range spec {
		key := specKey(&spec[i])
		bySpec[key] = append(bySpec[key], i)
	}

	out := table.NewWithCapacity(midpoint.Len())
	stats := Stats{Input: midpoint.Len()}

	for _, row := range midpoint.Rows() {
		matches, ok := bySpec[midKey(&row)]
		if !ok {
			stats.Dropped++
			continue
		}
		for _, i := range matches {
			expanded := row
			expanded.Indicator = spec[i].EndpointIndicator
			expanded.IndicatorUnit = spec[i].EndpointUnit
			expanded.Factor = row.Factor * spec[i].ConversionFactor
			out.Append(expanded)
			stats.Expanded++
		}
	}

	slog.Debug("endpoint expansion complete",
		slog.Int("input", stats.Input),
		slog.Int("expanded", stats.Expanded),
		slog.Int("dropped", stats.Dropped),
	)

	return out, stats, nil
}

// ReadSpecCSV parses an endpoint-conversion spec table from CSV data,
// validating the required column set. Missing required columns fail with
// a SchemaError; the Method and Context match columns are optional.
func ReadSpecCSV(r io.Reader) ([]SpecRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read endpoint table header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var missing []string
	for _, name := range requiredSpecColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewSchemaError("endpoint table", missing)
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []SpecRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read endpoint table: %w", err)
		}
		line++

		factor, err := strconv.ParseFloat(field(record, ColConversionFactor), 64)
		if err != nil {
			return nil, fmt.Errorf("endpoint table line %d: parse conversion factor: %w", line, err)
		}

		rows = append(rows, SpecRow{
			Method:            field(record, table.ColMethod),
			Indicator:         field(record, table.ColIndicator),
			Context:           field(record, table.ColContext),
			EndpointIndicator: field(record, ColEndpointIndicator),
			EndpointUnit:      field(record, ColEndpointUnit),
			ConversionFactor:  factor,
		})
	}

	return rows, nil
}

// Generate expands a midpoint table against a spec read from specReader
// and stamps the result's Method column with name. An empty name leaves
// the midpoint rows' Method values in place.
func Generate(midpoint *table.Table, specReader io.Reader, name string, matchingFields []string) (*table.Table, Stats, error) {
	spec, err := ReadSpecCSV(specReader)
	if err != nil {
		return nil, Stats{}, err
	}

	out, stats, err := Expand(midpoint, spec, matchingFields)
	if err != nil {
		return nil, stats, err
	}

	if name != "" {
		for i := range out.Rows() {
			out.Rows()[i].Method = name
		}
	}

	return out, stats, nil
}
