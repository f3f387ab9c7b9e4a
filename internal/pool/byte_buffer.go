package pool

import "sync"

const (
	// ArtifactBufferDefaultSize is the default capacity of pooled buffers.
	// Sized for a typical mapped method table (a few thousand rows of
	// short strings plus one float64 column).
	ArtifactBufferDefaultSize = 1024 * 16 // 16KiB

	// ArtifactBufferMaxThreshold is the largest buffer returned to the pool.
	// Oversized buffers from unusually large methods are dropped so the pool
	// does not pin their memory.
	ArtifactBufferMaxThreshold = 1024 * 512 // 512KiB
)

// ByteBuffer is a reusable byte slice wrapper used by the artifact codec.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow ensures the buffer has capacity for n more bytes.
func (bb *ByteBuffer) Grow(n int) {
	curLen := len(bb.B)
	if cap(bb.B)-curLen >= n {
		return
	}
	newBuf := make([]byte, curLen, curLen+n)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// MustWrite writes data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

var artifactBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(ArtifactBufferDefaultSize)
	},
}

// GetArtifactBuffer returns a reset ByteBuffer from the pool.
func GetArtifactBuffer() *ByteBuffer {
	bb := artifactBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutArtifactBuffer returns a ByteBuffer to the pool for reuse.
// Buffers that grew beyond ArtifactBufferMaxThreshold are dropped.
func PutArtifactBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > ArtifactBufferMaxThreshold {
		return
	}
	artifactBufferPool.Put(bb)
}
