package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fekomat/fekomat/feko"
)

const npyMagic = "\x93NUMPY"

// WriteNPY writes m as a NumPy 1.0 .npy array: C order, little-endian
// complex64 (<c8) or complex128 (<c16), shape (rows, cols).
func WriteNPY(w io.Writer, m *feko.Matrix) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(npyHeader(m)); err != nil {
		return err
	}

	var scratch [16]byte
	for i := 0; i < m.Rows; i++ {
		if m.Precision == feko.Single {
			for _, v := range m.Row64(i) {
				binary.LittleEndian.PutUint32(scratch[0:4], math.Float32bits(real(v)))
				binary.LittleEndian.PutUint32(scratch[4:8], math.Float32bits(imag(v)))
				if _, err := bw.Write(scratch[:8]); err != nil {
					return err
				}
			}
			continue
		}
		for _, v := range m.Row128(i) {
			binary.LittleEndian.PutUint64(scratch[0:8], math.Float64bits(real(v)))
			binary.LittleEndian.PutUint64(scratch[8:16], math.Float64bits(imag(v)))
			if _, err := bw.Write(scratch[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// npyHeader returns magic, version, header length and the dict, padded so the
// data starts on a 64-byte boundary.
func npyHeader(m *feko.Matrix) string {
	descr := "<c16"
	if m.Precision == feko.Single {
		descr = "<c8"
	}
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }", descr, m.Rows, m.Cols)
	const preamble = len(npyMagic) + 2 + 2
	total := preamble + len(dict) + 1
	if rem := total % 64; rem != 0 {
		total += 64 - rem
	}
	hlen := total - preamble
	dict += strings.Repeat(" ", hlen-len(dict)-1) + "\n"

	var b strings.Builder
	b.WriteString(npyMagic)
	b.WriteByte(1)
	b.WriteByte(0)
	b.WriteByte(byte(hlen))
	b.WriteByte(byte(hlen >> 8))
	b.WriteString(dict)
	return b.String()
}
