package compress

// ZstdCompressor provides Zstandard compression, the default for persisted
// method artifacts.
//
// Mapped methods are written once and read many times across processes, so
// the ratio-over-speed trade-off of Zstd fits the cache access pattern.
//
// Two implementations exist behind build tags: a cgo-backed one using
// valyala/gozstd and a pure-Go one using klauspost/compress/zstd. Both
// produce interchangeable Zstandard frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
