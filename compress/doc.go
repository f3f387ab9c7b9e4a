// Package compress provides pluggable compression codecs for cached method
// artifacts.
//
// Artifact payloads are columnar: string columns concatenate many short,
// highly repetitive values (method names, flow names, contexts), which
// compress extremely well, while the factor column is raw float64 data.
// Each payload section is compressed independently with the codec selected
// at encode time.
//
// Supported algorithms:
//   - None: pass-through, useful for debugging and tiny tables
//   - Zstd: best ratio, default for persisted artifacts
//   - S2: fastest, for short-lived scratch artifacts
//   - LZ4: balanced speed and ratio
package compress
