package artifact

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/lcacommons/lciafmt/compress"
	"github.com/lcacommons/lciafmt/endian"
	"github.com/lcacommons/lciafmt/errs"
	"github.com/lcacommons/lciafmt/format"
	"github.com/lcacommons/lciafmt/table"
)

// Decode parses an artifact produced by Encode back into a table.
//
// Structural defects (short data, bad magic, unknown compression,
// checksum mismatch, truncated sections) fail with an error wrapping
// errs.ErrInvalidArtifact.
func Decode(data []byte) (*table.Table, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", errs.ErrInvalidArtifact, len(data))
	}

	le := endian.GetLittleEndianEngine()
	if magic := le.Uint16(data[0:2]); magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%04X", errs.ErrInvalidArtifact, magic)
	}

	flags := data[2]
	compression := format.CompressionType(data[3])
	rowCount := int(le.Uint32(data[4:8]))
	strSize := int(le.Uint32(data[8:12]))
	facSize := int(le.Uint32(data[12:16]))
	provSize := int(le.Uint32(data[16:20]))
	wantSum := le.Uint32(data[20:24])

	if HeaderSize+strSize+facSize+provSize != len(data) {
		return nil, fmt.Errorf("%w: section sizes disagree with data length", errs.ErrInvalidArtifact)
	}

	strSec := data[HeaderSize : HeaderSize+strSize]
	facSec := data[HeaderSize+strSize : HeaderSize+strSize+facSize]
	provSec := data[HeaderSize+strSize+facSize:]

	checksum := crc32.NewIEEE()
	checksum.Write(strSec)
	checksum.Write(facSec)
	checksum.Write(provSec)
	if checksum.Sum32() != wantSum {
		return nil, fmt.Errorf("%w: checksum mismatch", errs.ErrInvalidArtifact)
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArtifact, err)
	}

	engine := endian.GetLittleEndianEngine()
	if flags&flagBigEndian != 0 {
		engine = endian.GetBigEndianEngine()
	}

	strData, err := codec.Decompress(strSec)
	if err != nil {
		return nil, fmt.Errorf("%w: string section: %v", errs.ErrInvalidArtifact, err)
	}
	facData, err := codec.Decompress(facSec)
	if err != nil {
		return nil, fmt.Errorf("%w: factor section: %v", errs.ErrInvalidArtifact, err)
	}
	provData, err := codec.Decompress(provSec)
	if err != nil {
		return nil, fmt.Errorf("%w: provenance section: %v", errs.ErrInvalidArtifact, err)
	}

	if len(facData) != rowCount*8 {
		return nil, fmt.Errorf("%w: factor section holds %d bytes, want %d", errs.ErrInvalidArtifact, len(facData), rowCount*8)
	}
	if len(provData) != rowCount {
		return nil, fmt.Errorf("%w: provenance section holds %d bytes, want %d", errs.ErrInvalidArtifact, len(provData), rowCount)
	}

	rows := make([]table.Row, rowCount)

	pos := 0
	for _, col := range stringColumns {
		for i := 0; i < rowCount; i++ {
			length, n := binary.Uvarint(strData[pos:])
			if n <= 0 {
				return nil, fmt.Errorf("%w: corrupt string length at offset %d", errs.ErrInvalidArtifact, pos)
			}
			pos += n
			// Compare in uint64 space: converting an untrusted length to
			// int first could wrap negative and slip past the bounds check.
			if length > uint64(len(strData)-pos) {
				return nil, fmt.Errorf("%w: string value overruns section", errs.ErrInvalidArtifact)
			}
			end := pos + int(length)
			*col(&rows[i]) = string(strData[pos:end])
			pos = end
		}
	}
	if pos != len(strData) {
		return nil, fmt.Errorf("%w: %d trailing bytes in string section", errs.ErrInvalidArtifact, len(strData)-pos)
	}

	for i := 0; i < rowCount; i++ {
		rows[i].Factor = math.Float64frombits(engine.Uint64(facData[i*8 : i*8+8]))
		rows[i].Provenance = table.Provenance(provData[i])
	}

	return table.FromRows(rows), nil
}
