package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lcacommons/lciafmt/errs"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := strings.Join([]string{
		"Method,Indicator,Indicator unit,Flowable,Context,Unit,CAS Number,Factor,Location",
		`TRACI 2.1,Acidification,kg SO2 eq,Sulfur dioxide,air,kg,7446-09-5,1.0,`,
		`TRACI 2.1,Acidification,kg SO2 eq,Nitrogen oxides,air,kg,,0.7,US`,
	}, "\n")

	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	row := tbl.Row(0)
	require.Equal(t, "Sulfur dioxide", row.Flowable)
	require.Equal(t, "7446-09-5", row.CASNumber)
	require.Equal(t, 1.0, row.Factor)

	require.Equal(t, "US", tbl.Row(1).Location)
}

func TestReadCSV_ColumnsInAnyOrder(t *testing.T) {
	data := strings.Join([]string{
		"Factor,Unit,Context,Flowable,Indicator,Method",
		`2.5,kg,air,Methane,Global warming,TRACI 2.1`,
	}, "\n")

	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, "Methane", tbl.Row(0).Flowable)
	require.Equal(t, 2.5, tbl.Row(0).Factor)
}

func TestReadCSV_MissingRequiredColumns(t *testing.T) {
	data := "Method,Indicator,Flowable\nTRACI 2.1,Acidification,Sulfur dioxide\n"

	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	require.True(t, errs.IsSchemaError(err))
	require.Contains(t, err.Error(), "Factor")
	require.Contains(t, err.Error(), "Context")
}

func TestReadCSV_BadFactor(t *testing.T) {
	data := strings.Join([]string{
		"Method,Indicator,Flowable,Context,Unit,Factor",
		`TRACI 2.1,Acidification,Sulfur dioxide,air,kg,not-a-number`,
	}, "\n")

	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	orig := FromRows(sampleRows())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, orig))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.True(t, orig.Equal(parsed))
}
