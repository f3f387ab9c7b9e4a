package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataPath(t *testing.T) {
	dataDir := t.TempDir()
	inData := filepath.Join(dataDir, "endpoints.csv")
	require.NoError(t, os.WriteFile(inData, []byte("x"), 0o644))

	workDir := t.TempDir()
	local := filepath.Join(workDir, "local.csv")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))

	t.Run("bare name falls back to data dir", func(t *testing.T) {
		got := resolveDataPath(dataDir, "endpoints.csv")
		require.Equal(t, inData, got)
	})

	t.Run("existing local file wins over data dir", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(workDir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		got := resolveDataPath(dataDir, "local.csv")
		require.Equal(t, "local.csv", got)
	})

	t.Run("explicit path untouched", func(t *testing.T) {
		explicit := filepath.Join(workDir, "endpoints.csv")
		require.Equal(t, explicit, resolveDataPath(dataDir, explicit))
	})

	t.Run("no data dir configured", func(t *testing.T) {
		require.Equal(t, "missing.csv", resolveDataPath("", "missing.csv"))
	})
}
