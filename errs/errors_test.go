package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("mapping table", []string{"TargetFlowName", "ConversionFactor"})
	require.Equal(t, "mapping table is missing required columns: TargetFlowName, ConversionFactor", err.Error())
	require.True(t, IsSchemaError(err))

	wrapped := fmt.Errorf("load mapping: %w", err)
	require.True(t, IsSchemaError(wrapped))

	require.False(t, IsSchemaError(errors.New("other")))
	require.False(t, IsSchemaError(nil))
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("lookup %q: %w", "bogus", ErrUnknownMethod)
	require.ErrorIs(t, err, ErrUnknownMethod)
	require.NotErrorIs(t, err, ErrUnknownMappingSystem)
}
