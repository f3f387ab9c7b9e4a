package method

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	records := All()
	require.NotEmpty(t, records)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	require.Contains(t, ids, "TRACI")
	require.Contains(t, ids, "RECIPE_2016")
	require.Contains(t, ids, "FEDEFL_INV")
	require.Contains(t, ids, "ImpactWorld")
}

func TestFind_ByEachKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		wantID string
	}{
		{"by registry ID", "TRACI", "TRACI"},
		{"by display name", "TRACI 2.1", "TRACI"},
		{"by mapping system", "ReCiPe2016", "RECIPE_2016"},
		{"by sub-method key", "Midpoint/H", "RECIPE_2016"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Find(tt.key)
			require.True(t, ok)
			require.Equal(t, tt.wantID, rec.ID)
		})
	}
}

func TestFind_Unknown(t *testing.T) {
	_, ok := Find("no such method")
	require.False(t, ok)
}

func TestRecord_Metadata(t *testing.T) {
	rec, ok := Find("RECIPE_2016")
	require.True(t, ok)
	require.True(t, rec.HasMapping())
	require.True(t, rec.CaseInsensitive)
	require.Equal(t, "ReCiPe_2016", rec.Filename())
	require.Equal(t, "ReCiPe 2016 - Midpoint/H", rec.Methods["Midpoint/H"])

	fedefl, ok := Find("FEDEFL_INV")
	require.True(t, ok)
	require.False(t, fedefl.HasMapping())
}

func TestAll_ReturnsCopies(t *testing.T) {
	a := All()
	a[0].Name = "mutated"
	b := All()
	require.NotEqual(t, "mutated", b[0].Name)
}

func TestMappingSystems(t *testing.T) {
	systems := MappingSystems()
	require.Contains(t, systems, "TRACI2.1")
	require.Contains(t, systems, "ReCiPe2016")
	require.NotContains(t, systems, "")
}
