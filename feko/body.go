package feko

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// DecodeMatrix reads h.Rows row records from r, which must be positioned at
// h.DataOffset, and assembles them into a new Matrix. Every row is framed by its
// byte size; the first row whose markers disagree with 2*cols*size(precision)
// aborts the decode with a *RowError.
func DecodeMatrix(r io.Reader, h Header) (*Matrix, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	want := h.RowBytes()
	buf := make([]byte, want+2*markerLen)

	// An in-memory source too short for every row is bound to fail; walk its
	// records without allocating so the failing row is still reported.
	var m *Matrix
	if br, ok := r.(*bytes.Reader); !ok || int64(h.Rows)*int64(len(buf)) <= int64(br.Len()) {
		m = NewMatrix(h.Rows, h.Cols, h.Precision)
	}
	for i := 0; i < h.Rows; i++ {
		payload, mk, err := readFrame(r, buf)
		if mk.truncatedMismatch(want) {
			return nil, &RowError{Row: i, Prefix: mk.prefix, Want: int32(want), Truncated: true, Err: ErrRowFrameMismatch}
		}
		if err != nil {
			return nil, &RowError{Row: i, Want: int32(want), Err: err}
		}
		if !mk.match(want) {
			return nil, &RowError{Row: i, Prefix: mk.prefix, Suffix: mk.suffix, Want: int32(want), Err: ErrRowFrameMismatch}
		}
		if m == nil {
			continue
		}
		if h.Precision == Single {
			decodeRow64(m.Row64(i), payload)
		} else {
			decodeRow128(m.Row128(i), payload)
		}
	}
	if m == nil {
		return nil, &RowError{Row: h.Rows, Want: int32(want), Err: io.ErrUnexpectedEOF}
	}
	return m, nil
}

// decodeRow64 pairs interleaved float32 samples: even indices are real parts,
// odd indices imaginary parts.
func decodeRow64(dst []complex64, payload []byte) {
	for j := range dst {
		re := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*j:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*j+4:]))
		dst[j] = complex(re, im)
	}
}

func decodeRow128(dst []complex128, payload []byte) {
	for j := range dst {
		re := math.Float64frombits(binary.LittleEndian.Uint64(payload[16*j:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(payload[16*j+8:]))
		dst[j] = complex(re, im)
	}
}
