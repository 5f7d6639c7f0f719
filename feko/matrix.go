package feko

import (
	"encoding/binary"
	"fmt"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
)

// Matrix is a dense, row-major complex matrix. Exactly one of C64 and C128 is
// populated, matching Precision: C64 for single, C128 for double.
type Matrix struct {
	Rows      int
	Cols      int
	Precision Precision
	C64       []complex64
	C128      []complex128
}

// NewMatrix allocates a zeroed rows x cols matrix at precision p.
func NewMatrix(rows, cols int, p Precision) *Matrix {
	m := &Matrix{Rows: rows, Cols: cols, Precision: p}
	switch p {
	case Single:
		m.C64 = make([]complex64, rows*cols)
	default:
		m.Precision = Double
		m.C128 = make([]complex128, rows*cols)
	}
	return m
}

// Len returns rows*cols.
func (m *Matrix) Len() int { return m.Rows * m.Cols }

// At returns element (i, j) widened to complex128.
func (m *Matrix) At(i, j int) complex128 {
	m.check(i, j)
	if m.Precision == Single {
		return complex128(m.C64[i*m.Cols+j])
	}
	return m.C128[i*m.Cols+j]
}

// Set stores v at (i, j), narrowing to complex64 for single precision.
func (m *Matrix) Set(i, j int, v complex128) {
	m.check(i, j)
	if m.Precision == Single {
		m.C64[i*m.Cols+j] = complex64(v)
		return
	}
	m.C128[i*m.Cols+j] = v
}

// Row64 returns row i of a single-precision matrix. The slice aliases the matrix.
func (m *Matrix) Row64(i int) []complex64 {
	if m.Precision != Single {
		return nil
	}
	return m.C64[i*m.Cols : (i+1)*m.Cols]
}

// Row128 returns row i of a double-precision matrix. The slice aliases the matrix.
func (m *Matrix) Row128(i int) []complex128 {
	if m.Precision != Double {
		return nil
	}
	return m.C128[i*m.Cols : (i+1)*m.Cols]
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic(fmt.Sprintf("feko: index (%d, %d) out of range for %dx%d matrix", i, j, m.Rows, m.Cols))
	}
}

// Fingerprint hashes the precision, the shape and the little-endian component
// bytes. Two matrices with the same fingerprint hold bit-identical values.
func (m *Matrix) Fingerprint() uint64 {
	d := xxhash.New()
	var hdr [17]byte
	hdr[0] = byte(m.Precision)
	binary.LittleEndian.PutUint64(hdr[1:9], uint64(m.Rows))
	binary.LittleEndian.PutUint64(hdr[9:17], uint64(m.Cols))
	_, _ = d.Write(hdr[:])

	buf := make([]byte, 2*m.Cols*m.Precision.Size())
	for i := 0; i < m.Rows; i++ {
		if m.Precision == Single {
			for j, v := range m.Row64(i) {
				binary.LittleEndian.PutUint32(buf[8*j:], math.Float32bits(real(v)))
				binary.LittleEndian.PutUint32(buf[8*j+4:], math.Float32bits(imag(v)))
			}
		} else {
			for j, v := range m.Row128(i) {
				binary.LittleEndian.PutUint64(buf[16*j:], math.Float64bits(real(v)))
				binary.LittleEndian.PutUint64(buf[16*j+8:], math.Float64bits(imag(v)))
			}
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}
