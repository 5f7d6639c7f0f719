package export

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/fekomat/fekomat/feko"
	"github.com/fekomat/fekomat/internal/fekotest"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matVariable struct {
	name    string
	class   uint32
	complex bool
	dims    []int32
	re, im  []float64
}

func readMATElement(t *testing.T, r *bytes.Reader) (uint32, []byte) {
	t.Helper()
	var tag uint32
	require.NoError(t, binary.Read(r, binary.LittleEndian, &tag))
	if n := tag >> 16; n != 0 {
		data := make([]byte, 4)
		_, err := io.ReadFull(r, data)
		require.NoError(t, err)
		return tag & 0xFFFF, data[:n]
	}
	var n uint32
	require.NoError(t, binary.Read(r, binary.LittleEndian, &n))
	data := make([]byte, n)
	_, err := io.ReadFull(r, data)
	require.NoError(t, err)
	if tag != miMATRIX && tag != miCOMPRESSED {
		if pad := (8 - int(n)%8) % 8; pad > 0 {
			_, err = r.Seek(int64(pad), io.SeekCurrent)
			require.NoError(t, err)
		}
	}
	return tag, data
}

func decodeNumeric(typ uint32, data []byte) []float64 {
	var out []float64
	switch typ {
	case miDOUBLE:
		for k := 0; k+8 <= len(data); k += 8 {
			out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(data[k:])))
		}
	case miSINGLE:
		for k := 0; k+4 <= len(data); k += 4 {
			out = append(out, float64(math.Float32frombits(binary.LittleEndian.Uint32(data[k:]))))
		}
	}
	return out
}

func readMAT(t *testing.T, file []byte) matVariable {
	t.Helper()
	require.GreaterOrEqual(t, len(file), matHeaderLen)
	assert.True(t, bytes.HasPrefix(file, []byte("MATLAB 5.0 MAT-file")))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(file[124:126]))
	assert.Equal(t, "IM", string(file[126:128]))

	r := bytes.NewReader(file[matHeaderLen:])
	typ, data := readMATElement(t, r)
	if typ == miCOMPRESSED {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		inner, err := io.ReadAll(zr)
		require.NoError(t, err)
		typ, data = readMATElement(t, bytes.NewReader(inner))
	}
	require.Equal(t, uint32(miMATRIX), typ)
	assert.Zero(t, r.Len(), "one variable per file")

	var v matVariable
	body := bytes.NewReader(data)
	_, flags := readMATElement(t, body)
	fl := binary.LittleEndian.Uint32(flags)
	v.class = fl & 0xFF
	v.complex = fl&matComplexFlag != 0

	_, dims := readMATElement(t, body)
	for k := 0; k < len(dims); k += 4 {
		v.dims = append(v.dims, int32(binary.LittleEndian.Uint32(dims[k:])))
	}
	_, name := readMATElement(t, body)
	v.name = string(name)

	typ, re := readMATElement(t, body)
	v.re = decodeNumeric(typ, re)
	typ, im := readMATElement(t, body)
	v.im = decodeNumeric(typ, im)
	assert.Zero(t, body.Len())
	return v
}

func TestWriteMAT_RoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		code     int32
		rows     int
		cols     int
		compress bool
		class    uint32
	}{
		{name: "Double3x3", code: 0, rows: 3, cols: 3, class: mxDOUBLE_CLASS},
		{name: "Single3x3", code: -1, rows: 3, cols: 3, class: mxSINGLE_CLASS},
		{name: "DoubleCompressed", code: 0, rows: 4, cols: 6, compress: true, class: mxDOUBLE_CLASS},
		{name: "SingleCompressed", code: -1, rows: 5, cols: 2, compress: true, class: mxSINGLE_CLASS},
		{name: "Single1x1", code: -1, rows: 1, cols: 1, class: mxSINGLE_CLASS},
		{name: "Empty", code: 0, rows: 0, cols: 0, class: mxDOUBLE_CLASS},
	}
	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := fekotest.New(int64(i+20), tc.code, tc.rows, tc.cols)
			res, err := feko.DecodeBytes(f.Bytes())
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteMAT(&buf, res.Matrix, "Zmat", tc.compress))
			v := readMAT(t, buf.Bytes())

			assert.Equal(t, "Zmat", v.name)
			assert.Equal(t, tc.class, v.class)
			assert.True(t, v.complex)
			assert.Equal(t, []int32{int32(tc.rows), int32(tc.cols)}, v.dims)
			require.Len(t, v.re, tc.rows*tc.cols)
			require.Len(t, v.im, tc.rows*tc.cols)

			want := f.Expected()
			for j := 0; j < tc.cols; j++ {
				for i := 0; i < tc.rows; i++ {
					k := j*tc.rows + i
					assert.Equal(t, real(want[i][j]), v.re[k])
					assert.Equal(t, imag(want[i][j]), v.im[k])
				}
			}
		})
	}
}

func TestWriteMAT_CompressionShrinksRedundantData(t *testing.T) {
	m := feko.NewMatrix(32, 32, feko.Double)
	var plain, packed bytes.Buffer
	require.NoError(t, WriteMAT(&plain, m, "Zmat", false))
	require.NoError(t, WriteMAT(&packed, m, "Zmat", true))
	assert.Less(t, packed.Len(), plain.Len())
}

func TestWriteMAT_Alignment(t *testing.T) {
	m := feko.NewMatrix(1, 3, feko.Single)
	var buf bytes.Buffer
	require.NoError(t, WriteMAT(&buf, m, "impedance", false))
	assert.Zero(t, (buf.Len()-matHeaderLen)%8)
	v := readMAT(t, buf.Bytes())
	assert.Equal(t, "impedance", v.name)
}

func TestWriteMAT_InvalidVarName(t *testing.T) {
	m := feko.NewMatrix(1, 1, feko.Double)
	for _, name := range []string{"", "1abc", "has space", "a-b", string(bytes.Repeat([]byte("a"), 64))} {
		err := WriteMAT(io.Discard, m, name, false)
		assert.ErrorIs(t, err, ErrInvalidVarName, name)
	}
}

func TestMATElementFits(t *testing.T) {
	testCases := []struct {
		elements int64
		size     int
		want     bool
	}{
		{268435391, 8, true},
		{268435392, 8, false},
		// fits when only one part is counted, overflows with both
		{300000000, 8, false},
		{536870783, 4, true},
		{536870784, 4, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, matElementFits(tc.elements, tc.size), "%d x %d bytes", tc.elements, tc.size)
	}
}
