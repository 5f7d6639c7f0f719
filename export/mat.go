package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"time"

	"github.com/fekomat/fekomat/feko"
	"github.com/klauspost/compress/zlib"
)

// MATLAB Level 5 data types and array classes.
const (
	miINT8       = 1
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miMATRIX     = 14
	miCOMPRESSED = 15

	mxDOUBLE_CLASS = 6
	mxSINGLE_CLASS = 7

	matComplexFlag = 0x0800
	matHeaderLen   = 128
	matTextLen     = 116
)

var varNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// WriteMAT writes m as a MATLAB 5.0 MAT-file holding one complex variable.
// Real and imaginary parts are stored column-major at the matrix precision.
func WriteMAT(w io.Writer, m *feko.Matrix, name string, compress bool) error {
	if !varNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidVarName, name)
	}
	if !matElementFits(int64(m.Len()), m.Precision.Size()) {
		return fmt.Errorf("%w: %dx%d exceeds the MAT v5 element size", ErrMatrixShape, m.Rows, m.Cols)
	}

	if _, err := w.Write(matFileHeader(time.Now())); err != nil {
		return err
	}
	elem := matrixElement(m, name)
	if !compress {
		_, err := w.Write(elem)
		return err
	}

	var zbuf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&zbuf, zlib.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(elem); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	var tag [8]byte
	binary.LittleEndian.PutUint32(tag[0:4], miCOMPRESSED)
	binary.LittleEndian.PutUint32(tag[4:8], uint32(zbuf.Len()))
	if _, err := w.Write(tag[:]); err != nil {
		return err
	}
	_, err = w.Write(zbuf.Bytes())
	return err
}

// matElementFits reports whether the real and imaginary parts of elements
// values, plus tags, dims and name, fit the uint32 size of one miMATRIX element.
func matElementFits(elements int64, size int) bool {
	const overhead = 1024
	return elements <= (math.MaxUint32-overhead)/(2*int64(size))
}

func matFileHeader(now time.Time) []byte {
	hdr := bytes.Repeat([]byte{' '}, matHeaderLen)
	text := "MATLAB 5.0 MAT-file Platform: posix, Created on: " + now.Format("Mon Jan _2 15:04:05 2006")
	copy(hdr[:matTextLen], text)
	for i := matTextLen; i < matTextLen+8; i++ {
		hdr[i] = 0
	}
	binary.LittleEndian.PutUint16(hdr[124:126], 0x0100)
	hdr[126], hdr[127] = 'I', 'M'
	return hdr
}

func matrixElement(m *feko.Matrix, name string) []byte {
	var body bytes.Buffer

	class := uint32(mxDOUBLE_CLASS)
	if m.Precision == feko.Single {
		class = mxSINGLE_CLASS
	}
	flags := make([]byte, 8)
	binary.LittleEndian.PutUint32(flags[0:4], class|matComplexFlag)
	writeMATElement(&body, miUINT32, flags)

	dims := make([]byte, 8)
	binary.LittleEndian.PutUint32(dims[0:4], uint32(m.Rows))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(m.Cols))
	writeMATElement(&body, miINT32, dims)

	writeMATElement(&body, miINT8, []byte(name))

	re, im := columnMajorParts(m)
	typ := uint32(miDOUBLE)
	if m.Precision == feko.Single {
		typ = miSINGLE
	}
	writeMATElement(&body, typ, re)
	writeMATElement(&body, typ, im)

	out := make([]byte, 8, 8+body.Len())
	binary.LittleEndian.PutUint32(out[0:4], miMATRIX)
	binary.LittleEndian.PutUint32(out[4:8], uint32(body.Len()))
	return append(out, body.Bytes()...)
}

// writeMATElement writes one tagged data element, using the packed small-element
// form for 1..4 byte payloads and 8-byte alignment otherwise.
func writeMATElement(buf *bytes.Buffer, typ uint32, data []byte) {
	n := len(data)
	if n > 0 && n <= 4 {
		_ = binary.Write(buf, binary.LittleEndian, uint32(n)<<16|typ)
		_, _ = buf.Write(data)
		_, _ = buf.Write(make([]byte, 4-n))
		return
	}
	_ = binary.Write(buf, binary.LittleEndian, typ)
	_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	_, _ = buf.Write(data)
	if pad := (8 - n%8) % 8; pad > 0 {
		_, _ = buf.Write(make([]byte, pad))
	}
}

func columnMajorParts(m *feko.Matrix) (re, im []byte) {
	size := m.Precision.Size()
	re = make([]byte, m.Len()*size)
	im = make([]byte, m.Len()*size)
	k := 0
	for j := 0; j < m.Cols; j++ {
		for i := 0; i < m.Rows; i++ {
			v := m.At(i, j)
			if size == 4 {
				binary.LittleEndian.PutUint32(re[k:], math.Float32bits(float32(real(v))))
				binary.LittleEndian.PutUint32(im[k:], math.Float32bits(float32(imag(v))))
			} else {
				binary.LittleEndian.PutUint64(re[k:], math.Float64bits(real(v)))
				binary.LittleEndian.PutUint64(im[k:], math.Float64bits(imag(v)))
			}
			k += size
		}
	}
	return re, im
}
