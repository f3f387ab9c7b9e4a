package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lcacommons/lciafmt/errs"
)

// Standard column names. External collaborators (method sources, mapping
// registries, export writers) rely on these exact strings.
const (
	ColMethod        = "Method"
	ColIndicator     = "Indicator"
	ColIndicatorUnit = "Indicator unit"
	ColFlowable      = "Flowable"
	ColContext       = "Context"
	ColUnit          = "Unit"
	ColCASNumber     = "CAS Number"
	ColFactor        = "Factor"
	ColLocation      = "Location"
)

// RequiredColumns is the minimum column set a factor table must supply.
var RequiredColumns = []string{
	ColMethod, ColIndicator, ColFlowable, ColContext, ColUnit, ColFactor,
}

// allColumns is the stable output column order for exports.
var allColumns = []string{
	ColMethod, ColIndicator, ColIndicatorUnit, ColFlowable, ColContext,
	ColUnit, ColCASNumber, ColFactor, ColLocation,
}

// ReadCSV parses a factor table from CSV data.
//
// The header row may list columns in any order; missing required columns
// fail with a SchemaError. Optional columns (Indicator unit, CAS Number,
// Location) default to empty when absent.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read factor table header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewSchemaError("factor table", missing)
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	t := New()
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read factor table: %w", err)
		}
		line++

		factor, err := strconv.ParseFloat(field(record, ColFactor), 64)
		if err != nil {
			return nil, fmt.Errorf("factor table line %d: parse factor: %w", line, err)
		}

		t.Append(Row{
			Method:        field(record, ColMethod),
			Indicator:     field(record, ColIndicator),
			IndicatorUnit: field(record, ColIndicatorUnit),
			Flowable:      field(record, ColFlowable),
			Context:       field(record, ColContext),
			Unit:          field(record, ColUnit),
			CASNumber:     field(record, ColCASNumber),
			Factor:        factor,
			Location:      field(record, ColLocation),
		})
	}

	return t, nil
}

// WriteCSV writes the table in the stable standard column order.
//
// Factor values are formatted with strconv.FormatFloat 'g' at full
// precision so a written table parses back to identical float64 values.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(allColumns); err != nil {
		return fmt.Errorf("write factor table header: %w", err)
	}

	record := make([]string, len(allColumns))
	for i := range t.Rows() {
		row := &t.Rows()[i]
		record[0] = row.Method
		record[1] = row.Indicator
		record[2] = row.IndicatorUnit
		record[3] = row.Flowable
		record[4] = row.Context
		record[5] = row.Unit
		record[6] = row.CASNumber
		record[7] = strconv.FormatFloat(row.Factor, 'g', -1, 64)
		record[8] = row.Location
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write factor table row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}
