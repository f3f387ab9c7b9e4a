package artifact

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/lcacommons/lciafmt/compress"
	"github.com/lcacommons/lciafmt/endian"
	"github.com/lcacommons/lciafmt/format"
	"github.com/lcacommons/lciafmt/internal/options"
	"github.com/lcacommons/lciafmt/internal/pool"
	"github.com/lcacommons/lciafmt/table"
)

type encoderConfig struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	bigEndian   bool
}

// Option is a functional option for configuring the encoder.
type Option = options.Option[*encoderConfig]

// WithCompression selects the compression codec for the payload sections.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *encoderConfig) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithLittleEndian selects little-endian payload byte order (the default).
func WithLittleEndian() Option {
	return options.NoError(func(c *encoderConfig) {
		c.engine = endian.GetLittleEndianEngine()
		c.bigEndian = false
	})
}

// WithBigEndian selects big-endian payload byte order.
func WithBigEndian() Option {
	return options.NoError(func(c *encoderConfig) {
		c.engine = endian.GetBigEndianEngine()
		c.bigEndian = true
	})
}

// Encode serializes a table into the artifact binary format.
func Encode(t *table.Table, opts ...Option) ([]byte, error) {
	cfg := &encoderConfig{
		compression: DefaultCompression,
		engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	rows := t.Rows()
	if len(rows) > math.MaxUint32 {
		return nil, fmt.Errorf("table has %d rows, exceeding the artifact row limit", len(rows))
	}

	// Stage the uncompressed sections in pooled buffers.
	strBuf := pool.GetArtifactBuffer()
	defer pool.PutArtifactBuffer(strBuf)
	for _, col := range stringColumns {
		for i := range rows {
			val := *col(&rows[i])
			strBuf.B = binary.AppendUvarint(strBuf.B, uint64(len(val)))
			strBuf.B = append(strBuf.B, val...)
		}
	}

	facBuf := pool.GetArtifactBuffer()
	defer pool.PutArtifactBuffer(facBuf)
	facBuf.Grow(len(rows) * 8)
	for i := range rows {
		facBuf.B = cfg.engine.AppendUint64(facBuf.B, math.Float64bits(rows[i].Factor))
	}

	provBuf := pool.GetArtifactBuffer()
	defer pool.PutArtifactBuffer(provBuf)
	provBuf.Grow(len(rows))
	for i := range rows {
		provBuf.B = append(provBuf.B, byte(rows[i].Provenance))
	}

	strSec, err := codec.Compress(strBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress string section: %w", err)
	}
	facSec, err := codec.Compress(facBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress factor section: %w", err)
	}
	provSec, err := codec.Compress(provBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress provenance section: %w", err)
	}

	checksum := crc32.NewIEEE()
	checksum.Write(strSec)
	checksum.Write(facSec)
	checksum.Write(provSec)

	var flags uint8
	if cfg.bigEndian {
		flags |= flagBigEndian
	}

	// Header fields are always little-endian so a decoder can read them
	// before it knows the payload byte order.
	le := endian.GetLittleEndianEngine()
	out := make([]byte, 0, HeaderSize+len(strSec)+len(facSec)+len(provSec))
	out = le.AppendUint16(out, Magic)
	out = append(out, flags, byte(cfg.compression))
	out = le.AppendUint32(out, uint32(len(rows)))
	out = le.AppendUint32(out, uint32(len(strSec)))
	out = le.AppendUint32(out, uint32(len(facSec)))
	out = le.AppendUint32(out, uint32(len(provSec)))
	out = le.AppendUint32(out, checksum.Sum32())

	out = append(out, strSec...)
	out = append(out, facSec...)
	out = append(out, provSec...)

	return out, nil
}
