package feko

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies an outer compression layer around a matrix file.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompGzip Compression = 2
	CompZstd Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompGzip:
		return "gzip"
	case CompZstd:
		return "zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// DetectCompression sniffs the leading magic bytes. An uncompressed file always
// starts with the version prefix (04 00 00 00), which none of the magics collide with.
func DetectCompression(data []byte) Compression {
	switch {
	case len(data) >= 4 && data[0] == 0x28 && data[1] == 0xB5 && data[2] == 0x2F && data[3] == 0xFD:
		return CompZstd
	case len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B:
		return CompGzip
	case len(data) >= 2 && data[0]&0x0F == 8 && data[0]>>4 <= 7 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		return CompZlib
	}
	return CompNone
}

// Decompress strips the layer named by c.
func Decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompNone:
		return data, nil
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CompGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	return nil, fmt.Errorf("feko: unsupported compression: %d", c)
}
