package export

import (
	"bytes"
	"testing"

	"github.com/fekomat/fekomat/feko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind(" NPY ")
	require.NoError(t, err)
	assert.Equal(t, KindNPY, got)

	for _, bad := range []string{"", "xlsx", "mat73", "txt"} {
		_, err := ParseKind(bad)
		assert.ErrorIs(t, err, ErrUnsupportedOutputType, bad)
	}
}

func TestKind_Extension(t *testing.T) {
	assert.Equal(t, ".mat", KindMAT.Extension())
	assert.Equal(t, ".glb", KindGLB.Extension())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestWrite_Dispatch(t *testing.T) {
	m := feko.NewMatrix(2, 2, feko.Double)
	m.Set(1, 1, 1+1i)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, KindMAT, Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("MATLAB 5.0")))
	v := readMAT(t, buf.Bytes())
	assert.Equal(t, "Zmat", v.name)

	buf.Reset()
	require.NoError(t, Write(&buf, m, KindNPY, DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(npyMagic)))

	buf.Reset()
	require.NoError(t, Write(&buf, m, KindCSV, DefaultOptions()))
	assert.Contains(t, buf.String(), "j)")

	buf.Reset()
	require.NoError(t, Write(&buf, m, KindGLB, DefaultOptions()))
	assert.Equal(t, "glTF", buf.String()[:4])

	assert.ErrorIs(t, Write(&buf, m, Kind(42), DefaultOptions()), ErrUnsupportedOutputType)
}
