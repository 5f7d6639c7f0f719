package export

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fekomat/fekomat/feko"
)

// WriteCSV writes one line per row with comma-separated complex values in the
// form numpy.savetxt uses for complex arrays, " (re+imj)" with 18 digit
// mantissas, so numpy.loadtxt(..., dtype=complex, delimiter=",") reads it back.
// Single-precision values are widened before formatting.
func WriteCSV(w io.Writer, m *feko.Matrix) error {
	bw := bufio.NewWriter(w)
	var line strings.Builder
	for i := 0; i < m.Rows; i++ {
		line.Reset()
		for j := 0; j < m.Cols; j++ {
			if j > 0 {
				line.WriteByte(',')
			}
			v := m.At(i, j)
			line.WriteString(" (")
			line.WriteString(formatSci(real(v)))
			line.WriteByte('+')
			line.WriteString(formatSci(imag(v)))
			line.WriteString("j)")
		}
		line.WriteByte('\n')
		if _, err := bw.WriteString(strings.ReplaceAll(line.String(), "+-", "-")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatSci matches C's %.18e, including its nan/inf spelling.
func formatSci(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'e', 18, 64)
}
