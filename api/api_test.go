package api

import (
	"bytes"
	"testing"

	"github.com/fekomat/fekomat/export"
	"github.com/fekomat/fekomat/feko"
	"github.com/fekomat/fekomat/internal/fekotest"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_AllKinds(t *testing.T) {
	f := fekotest.New(100, 0, 3, 3)
	prefixes := map[export.Kind]string{
		export.KindMAT: "MATLAB 5.0 MAT-file",
		export.KindNPY: "\x93NUMPY",
		export.KindCSV: " (",
		export.KindGLB: "glTF",
	}
	for kind, prefix := range prefixes {
		t.Run(kind.String(), func(t *testing.T) {
			out, res, err := Convert(f.Bytes(), kind, export.DefaultOptions())
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte(prefix)))
			assert.Equal(t, 3, res.Matrix.Rows)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestConvert_DecodeError(t *testing.T) {
	data := fekotest.New(1, 0, 2, 2).Bytes()
	data[feko.HeaderLen] ^= 0xFF
	out, res, err := Convert(data, export.KindNPY, export.DefaultOptions())
	assert.Nil(t, out)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, feko.ErrRowFrameMismatch)
	assert.ErrorContains(t, err, "decode impedance matrix")
}

func TestConvert_ExportError(t *testing.T) {
	data := fekotest.New(1, 0, 1, 4).Bytes()
	_, res, err := Convert(data, export.KindGLB, export.DefaultOptions())
	assert.ErrorIs(t, err, export.ErrMatrixShape)
	require.NotNil(t, res)
	assert.Equal(t, 4, res.Matrix.Cols)
}

func TestInspect(t *testing.T) {
	f := fekotest.New(1, -1, 7, 2)
	f.Version = 6
	h, err := Inspect(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, feko.Single, h.Precision)
	assert.Equal(t, 7, h.Rows)
	assert.ErrorIs(t, h.CheckVersion(), feko.ErrVersionUnsupported)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	h2, err := Inspect(enc.EncodeAll(f.Bytes(), nil))
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	_, err = Inspect([]byte{1, 2, 3})
	assert.ErrorContains(t, err, "decode header")
}

func TestInspect_FalseCompressionMagic(t *testing.T) {
	data := fekotest.New(1, 0, 2, 2).Bytes()
	data[0], data[1] = 0x78, 0x9C
	_, err := Inspect(data)
	assert.ErrorIs(t, err, feko.ErrFrameMismatch)
	assert.ErrorContains(t, err, "decompress zlib input")
}
