// Package fekotest builds impedance matrix files for tests.
package fekotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
)

// Fixture describes a file to encode. Data holds the interleaved real/imaginary
// scalars of each row; a row of the wrong length is framed with its own length,
// which lets tests build files whose rows disagree with the header.
type Fixture struct {
	Version       int32
	Checksum      [32]byte
	PrecisionCode int32
	Rows          int32
	Cols          int32
	Data          [][]float64
}

// New returns a version 5 fixture filled with seeded normally distributed
// samples. code is 0 for double and -1 for single; single-precision samples are
// rounded through float32 so they survive the round trip exactly.
func New(seed int64, code int32, rows, cols int) Fixture {
	f := Fixture{
		Version:       5,
		PrecisionCode: code,
		Rows:          int32(rows),
		Cols:          int32(cols),
		Data:          RandomScalars(seed, rows, 2*cols),
	}
	for i := range f.Checksum {
		f.Checksum[i] = 'c'
	}
	if code == -1 {
		for _, row := range f.Data {
			for j, v := range row {
				row[j] = float64(float32(v))
			}
		}
	}
	return f
}

// RandomScalars returns rows x n samples from a seeded normal distribution.
func RandomScalars(seed int64, rows, n int) [][]float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = r.NormFloat64()
		}
	}
	return out
}

// Expected pairs the scalars of each row into complex values.
func (f Fixture) Expected() [][]complex128 {
	out := make([][]complex128, len(f.Data))
	for i, row := range f.Data {
		out[i] = make([]complex128, len(row)/2)
		for j := range out[i] {
			out[i][j] = complex(row[2*j], row[2*j+1])
		}
	}
	return out
}

func (f Fixture) scalarSize() int {
	if f.PrecisionCode == -1 {
		return 4
	}
	return 8
}

// RowBytes is the payload size the header implies for each row.
func (f Fixture) RowBytes() int {
	return 2 * int(f.Cols) * f.scalarSize()
}

// Bytes encodes the fixture with the documented framing.
func (f Fixture) Bytes() []byte {
	var buf bytes.Buffer
	writeInt32Field(&buf, f.Version)
	WriteField(&buf, 32, f.Checksum[:], 32)
	writeInt32Field(&buf, f.PrecisionCode)
	writeInt32Field(&buf, f.Rows)
	writeInt32Field(&buf, f.Cols)

	size := f.scalarSize()
	for _, row := range f.Data {
		payload := make([]byte, len(row)*size)
		for j, v := range row {
			if size == 4 {
				binary.LittleEndian.PutUint32(payload[4*j:], math.Float32bits(float32(v)))
			} else {
				binary.LittleEndian.PutUint64(payload[8*j:], math.Float64bits(v))
			}
		}
		n := int32(len(payload))
		WriteField(&buf, n, payload, n)
	}
	return buf.Bytes()
}

// WriteField appends one framed block with explicit markers.
func WriteField(buf *bytes.Buffer, prefix int32, payload []byte, suffix int32) {
	_ = binary.Write(buf, binary.LittleEndian, prefix)
	_, _ = buf.Write(payload)
	_ = binary.Write(buf, binary.LittleEndian, suffix)
}

func writeInt32Field(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	WriteField(buf, 4, b[:], 4)
}

// Marker is the byte offset of one frame marker in an encoded file.
type Marker struct {
	Name   string
	Offset int
	Row    int // -1 for header fields
}

// HeaderMarkers lists the prefix and suffix offsets of the five header fields.
func HeaderMarkers() []Marker {
	fields := []struct {
		name string
		size int
	}{{"version", 4}, {"checksum", 32}, {"precision", 4}, {"rows", 4}, {"cols", 4}}
	var out []Marker
	off := 0
	for _, fld := range fields {
		out = append(out,
			Marker{Name: fld.name + " prefix", Offset: off, Row: -1},
			Marker{Name: fld.name + " suffix", Offset: off + 4 + fld.size, Row: -1})
		off += fld.size + 8
	}
	return out
}

// RowMarkers lists the prefix and suffix offsets of every row record.
func (f Fixture) RowMarkers() []Marker {
	var out []Marker
	off := 88
	rb := f.RowBytes()
	for i := 0; i < int(f.Rows); i++ {
		out = append(out,
			Marker{Name: "row prefix", Offset: off, Row: i},
			Marker{Name: "row suffix", Offset: off + 4 + rb, Row: i})
		off += rb + 8
	}
	return out
}
