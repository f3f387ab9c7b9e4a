package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		{Method: "TRACI 2.1", Indicator: "Acidification", IndicatorUnit: "kg SO2 eq", Flowable: "Sulfur dioxide", Context: "air", Unit: "kg", Factor: 1.0},
		{Method: "TRACI 2.1", Indicator: "Acidification", IndicatorUnit: "kg SO2 eq", Flowable: "Nitrogen oxides", Context: "air", Unit: "kg", Factor: 0.7},
		{Method: "TRACI 2.1", Indicator: "Global warming", IndicatorUnit: "kg CO2 eq", Flowable: "Methane", Context: "air", Unit: "kg", Factor: 25.0},
	}
}

func TestTable_AppendPreservesOrder(t *testing.T) {
	tbl := New()
	tbl.Append(sampleRows()...)
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, "Sulfur dioxide", tbl.Row(0).Flowable)
	require.Equal(t, "Methane", tbl.Row(2).Flowable)
}

func TestTable_Indicators(t *testing.T) {
	tbl := FromRows(sampleRows())
	require.Equal(t, []string{"Acidification", "Global warming"}, tbl.Indicators())
}

func TestTable_FilterIndicators(t *testing.T) {
	tbl := FromRows(sampleRows())

	got := tbl.FilterIndicators([]string{"Acidification"})
	require.Equal(t, 2, got.Len())

	empty := tbl.FilterIndicators([]string{"Ozone depletion"})
	require.Equal(t, 0, empty.Len())
}

func TestTable_FilterMethods(t *testing.T) {
	tbl := FromRows(sampleRows())
	require.Equal(t, 3, tbl.FilterMethods([]string{"TRACI 2.1"}).Len())
	require.Equal(t, 0, tbl.FilterMethods([]string{"ReCiPe 2016"}).Len())
}

func TestTable_Equal(t *testing.T) {
	a := FromRows(sampleRows())

	reversed := sampleRows()
	reversed[0], reversed[2] = reversed[2], reversed[0]
	b := FromRows(reversed)
	require.True(t, a.Equal(b))

	c := FromRows(sampleRows()[:2])
	require.False(t, a.Equal(c))

	// Duplicate counts matter.
	d := FromRows([]Row{sampleRows()[0], sampleRows()[0], sampleRows()[1]})
	require.False(t, a.Equal(d))
}

func TestTable_Clone(t *testing.T) {
	a := FromRows(sampleRows())
	b := a.Clone()
	b.Rows()[0].Factor = 99

	require.Equal(t, 1.0, a.Row(0).Factor)
	require.Equal(t, 99.0, b.Row(0).Factor)
}

func TestProvenance_String(t *testing.T) {
	require.Equal(t, "unmapped", ProvenanceUnmapped.String())
	require.Equal(t, "mapped", ProvenanceMapped.String())
	require.Equal(t, "preserved", ProvenancePreserved.String())
}
