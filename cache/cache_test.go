package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lcacommons/lciafmt/format"
	"github.com/lcacommons/lciafmt/table"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(WithDir(t.TempDir()))
	require.NoError(t, err)

	return c
}

func methodTable() *table.Table {
	return table.FromRows([]table.Row{
		{Method: "TRACI 2.1", Indicator: "Acidification", Flowable: "Sulfur dioxide", Context: "emission/air", Unit: "kg", Factor: 1.0, Provenance: table.ProvenanceMapped},
		{Method: "TRACI 2.1", Indicator: "Acidification", Flowable: "Nitrogen oxides", Context: "emission/air", Unit: "kg", Factor: 0.7, Provenance: table.ProvenanceMapped},
	})
}

func TestCache_StoreReadRoundTrip(t *testing.T) {
	c := testCache(t)
	orig := methodTable()

	require.NoError(t, c.Store("TRACI", orig))

	got, ok, err := c.Read("TRACI")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, orig.Equal(got))
}

func TestCache_ReadAbsent(t *testing.T) {
	c := testCache(t)

	got, ok, err := c.Read("never stored")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestCache_StoreOverwrites(t *testing.T) {
	c := testCache(t)
	require.NoError(t, c.Store("TRACI", methodTable()))

	replacement := table.FromRows([]table.Row{
		{Method: "TRACI 2.1", Indicator: "Global warming", Flowable: "Methane", Context: "emission/air", Unit: "kg", Factor: 25.0},
	})
	require.NoError(t, c.Store("TRACI", replacement))

	got, ok, err := c.Read("TRACI")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, replacement.Equal(got))
}

func TestCache_DeterministicPaths(t *testing.T) {
	dir := t.TempDir()
	a, err := New(WithDir(dir))
	require.NoError(t, err)
	b, err := New(WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, a.path("ReCiPe 2016"), b.path("ReCiPe 2016"))
	require.NotEqual(t, a.path("ReCiPe 2016"), a.path("recipe 2016"))

	// Identifiers that sanitize identically stay distinct via the hash.
	require.NotEqual(t, a.path("a.b"), a.path("a b"))
}

func TestCache_CategorySubdirectories(t *testing.T) {
	c := testCache(t)

	require.NoError(t, c.Store("traci/TRACI_2.1", methodTable()))

	// The slash in the identifier becomes a subdirectory of the cache dir.
	path := c.path("traci/TRACI_2.1")
	require.Equal(t, filepath.Join(c.Dir(), "traci"), filepath.Dir(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, ok, err := c.Read("traci/TRACI_2.1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, methodTable().Equal(got))

	require.NoError(t, c.Clear())
	_, ok, err = c.Read("traci/TRACI_2.1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_ClearRemovesAllMethods(t *testing.T) {
	c := testCache(t)
	require.NoError(t, c.Store("TRACI", methodTable()))
	require.NoError(t, c.Store("ReCiPe 2016", methodTable()))

	require.NoError(t, c.Clear())

	for _, id := range []string{"TRACI", "ReCiPe 2016"} {
		_, ok, err := c.Read(id)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestCache_ClearMissingDirIsNoop(t *testing.T) {
	c, err := New(WithDir(filepath.Join(t.TempDir(), "does", "not", "exist")))
	require.NoError(t, err)
	require.NoError(t, c.Clear())
}

func TestCache_GetOrCompute(t *testing.T) {
	t.Run("computes once and persists", func(t *testing.T) {
		c := testCache(t)
		var calls atomic.Int32

		compute := func() (*table.Table, error) {
			calls.Add(1)
			return methodTable(), nil
		}

		got, err := c.GetOrCompute("TRACI", compute)
		require.NoError(t, err)
		require.True(t, methodTable().Equal(got))

		again, err := c.GetOrCompute("TRACI", compute)
		require.NoError(t, err)
		require.True(t, got.Equal(again))
		require.Equal(t, int32(1), calls.Load())

		// Persisted for cross-process reuse.
		_, ok, err := c.Read("TRACI")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("at most one compute under concurrency", func(t *testing.T) {
		c := testCache(t)
		var calls atomic.Int32

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.GetOrCompute("TRACI", func() (*table.Table, error) {
					calls.Add(1)
					return methodTable(), nil
				})
				require.NoError(t, err)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("reads existing artifact without computing", func(t *testing.T) {
		c := testCache(t)
		require.NoError(t, c.Store("TRACI", methodTable()))

		got, err := c.GetOrCompute("TRACI", func() (*table.Table, error) {
			t.Fatal("compute must not run when the artifact exists")
			return nil, nil
		})
		require.NoError(t, err)
		require.True(t, methodTable().Equal(got))
	})

	t.Run("memoizes compute errors", func(t *testing.T) {
		c := testCache(t)
		var calls atomic.Int32
		boom := errors.New("source unavailable")

		for i := 0; i < 3; i++ {
			_, err := c.GetOrCompute("broken", func() (*table.Table, error) {
				calls.Add(1)
				return nil, boom
			})
			require.ErrorIs(t, err, boom)
		}
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("clear forces regeneration", func(t *testing.T) {
		c := testCache(t)
		var calls atomic.Int32
		compute := func() (*table.Table, error) {
			calls.Add(1)
			return methodTable(), nil
		}

		_, err := c.GetOrCompute("TRACI", compute)
		require.NoError(t, err)
		require.NoError(t, c.Clear())

		_, err = c.GetOrCompute("TRACI", compute)
		require.NoError(t, err)
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("regenerates over corrupt artifact", func(t *testing.T) {
		c := testCache(t)
		require.NoError(t, c.Store("TRACI", methodTable()))
		require.NoError(t, os.WriteFile(c.path("TRACI"), []byte("garbage"), 0o644))

		got, err := c.GetOrCompute("TRACI", func() (*table.Table, error) {
			return methodTable(), nil
		})
		require.NoError(t, err)
		require.True(t, methodTable().Equal(got))
	})
}

func TestCache_CompressionOption(t *testing.T) {
	c, err := New(WithDir(t.TempDir()), WithCompression(format.CompressionS2))
	require.NoError(t, err)

	require.NoError(t, c.Store("TRACI", methodTable()))
	got, ok, err := c.Read("TRACI")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, methodTable().Equal(got))
}
