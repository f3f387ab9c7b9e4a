// Package artifact implements the columnar binary format for persisted
// method tables.
//
// An artifact holds one consolidated method table. The layout is a fixed
// header followed by three independently compressed payload sections:
//
//	header (24 bytes, little-endian):
//	  magic        uint16
//	  flags        uint8   bit 0: payload endianness (0=little, 1=big)
//	  compression  uint8   format.CompressionType
//	  rowCount     uint32
//	  stringSize   uint32  compressed string section size
//	  factorSize   uint32  compressed factor section size
//	  flagSize     uint32  compressed provenance section size
//	  checksum     uint32  CRC32 (IEEE) over the compressed sections
//
//	string section:  the eight string columns, column-major; each value
//	                 is uvarint length + UTF-8 bytes
//	factor section:  rowCount raw float64 values
//	provenance section: rowCount provenance bytes
//
// Column-major string storage keeps repetitive values (method names,
// contexts, units) adjacent, which is what makes the compressed sections
// small.
//
// The format carries no version field: a cached artifact is regenerated,
// never migrated.
package artifact

import (
	"github.com/lcacommons/lciafmt/format"
	"github.com/lcacommons/lciafmt/table"
)

const (
	// Magic identifies an artifact file.
	Magic uint16 = 0x1CF1

	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 24

	// flagBigEndian marks big-endian payload byte order in the header
	// flags field. The header itself is always little-endian.
	flagBigEndian uint8 = 0x01
)

// DefaultCompression is applied when the encoder is given no compression
// option. Artifacts are written once and read many times, so the
// ratio-oriented codec is the default.
const DefaultCompression = format.CompressionZstd

// stringColumns enumerates the string columns in their section order.
// The factor column is stored separately as raw float64 data.
var stringColumns = []func(*table.Row) *string{
	func(r *table.Row) *string { return &r.Method },
	func(r *table.Row) *string { return &r.Indicator },
	func(r *table.Row) *string { return &r.IndicatorUnit },
	func(r *table.Row) *string { return &r.Flowable },
	func(r *table.Row) *string { return &r.Context },
	func(r *table.Row) *string { return &r.Unit },
	func(r *table.Row) *string { return &r.CASNumber },
	func(r *table.Row) *string { return &r.Location },
}
