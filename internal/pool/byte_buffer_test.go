package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("hello"))
	require.Equal(t, 5, bb.Len())
	require.Equal(t, []byte("hello"), bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 8)
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2})
	bb.Grow(100)
	require.GreaterOrEqual(t, cap(bb.B), 102)
	require.Equal(t, []byte{1, 2}, bb.Bytes())
}

func TestArtifactBufferPool(t *testing.T) {
	bb := GetArtifactBuffer()
	require.Equal(t, 0, bb.Len())
	bb.MustWrite([]byte("data"))
	PutArtifactBuffer(bb)

	bb2 := GetArtifactBuffer()
	require.Equal(t, 0, bb2.Len())
	PutArtifactBuffer(bb2)
}

func TestArtifactBufferPool_DropsOversized(t *testing.T) {
	bb := NewByteBuffer(ArtifactBufferMaxThreshold + 1)
	// Should not panic; oversized buffer is silently dropped.
	PutArtifactBuffer(bb)
	PutArtifactBuffer(nil)
}
