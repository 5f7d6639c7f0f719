// Package export writes a decoded impedance matrix into interchange containers.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fekomat/fekomat/feko"
)

var (
	ErrUnsupportedOutputType = errors.New("export: output type is not one of mat, npy, csv, glb")
	ErrInvalidVarName        = errors.New("export: invalid MATLAB variable name")
	ErrMatrixShape           = errors.New("export: matrix shape not supported by output type")
)

// Kind selects the output container.
type Kind uint8

const (
	KindMAT Kind = iota
	KindNPY
	KindCSV
	KindGLB
)

var kindNames = map[Kind]string{
	KindMAT: "mat",
	KindNPY: "npy",
	KindCSV: "csv",
	KindGLB: "glb",
}

// Kinds lists every supported kind in flag order.
func Kinds() []Kind { return []Kind{KindMAT, KindNPY, KindCSV, KindGLB} }

// ParseKind maps a --type value to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedOutputType, s)
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Extension is the conventional file suffix, including the dot.
func (k Kind) Extension() string { return "." + k.String() }

// Options tunes the writers. Zero values fall back to DefaultOptions.
type Options struct {
	// VarName is the MATLAB variable holding the matrix.
	VarName string
	// Compress stores the MAT variable as a zlib-compressed element.
	Compress bool
}

func DefaultOptions() Options {
	return Options{VarName: "Zmat"}
}

// Write encodes m as kind into w.
func Write(w io.Writer, m *feko.Matrix, kind Kind, opts Options) error {
	if opts.VarName == "" {
		opts.VarName = DefaultOptions().VarName
	}
	switch kind {
	case KindMAT:
		return WriteMAT(w, m, opts.VarName, opts.Compress)
	case KindNPY:
		return WriteNPY(w, m)
	case KindCSV:
		return WriteCSV(w, m)
	case KindGLB:
		return WriteGLB(w, m)
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedOutputType, kind)
}
