package feko

import (
	"fmt"
	"io"
	"math"
)

const (
	// SupportedVersion is the only file version the decoder is validated against.
	SupportedVersion = 5
	// ChecksumLen is the size of the opaque identifier block in the header.
	ChecksumLen = 32
	// HeaderLen is the number of bytes taken by the five framed header fields.
	HeaderLen = 4*(4+2*markerLen) + ChecksumLen + 2*markerLen
)

// Hard ceilings on the matrix allocation, independent of Decoder limits.
const (
	maxElements    = int64(math.MaxInt)
	maxMatrixBytes = int64(1) << 40
)

// Precision is the width of each real or imaginary component in the file.
type Precision uint8

const (
	Double Precision = iota + 1
	Single
)

// PrecisionFromCode maps the file's precision code to a Precision:
// 0 is double, -1 is single.
func PrecisionFromCode(code int32) (Precision, error) {
	switch code {
	case 0:
		return Double, nil
	case -1:
		return Single, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownPrecision, code)
}

// Code returns the value stored in the file for p.
func (p Precision) Code() int32 {
	if p == Single {
		return -1
	}
	return 0
}

// Size is the byte width of one scalar component, or 0 for an invalid Precision.
func (p Precision) Size() int {
	switch p {
	case Double:
		return 8
	case Single:
		return 4
	}
	return 0
}

func (p Precision) String() string {
	switch p {
	case Double:
		return "double"
	case Single:
		return "single"
	}
	return fmt.Sprintf("Precision(%d)", uint8(p))
}

// Header holds the fixed fields at the start of an impedance matrix file.
// It is built once by DecodeHeader and not modified afterwards.
type Header struct {
	Version   int32
	Checksum  [ChecksumLen]byte
	Precision Precision
	Rows      int
	Cols      int
	// DataOffset is the byte offset of the first row record.
	DataOffset int64
}

// CheckVersion returns ErrVersionUnsupported when the file was written by a version
// other than SupportedVersion. The error is advisory; decoding can continue.
func (h Header) CheckVersion() error {
	if h.Version != SupportedVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionUnsupported, h.Version, SupportedVersion)
	}
	return nil
}

// RowBytes is the payload size of one row record: 2*cols scalars.
func (h Header) RowBytes() int {
	return 2 * h.Cols * h.Precision.Size()
}

// Elements is rows*cols.
func (h Header) Elements() int64 {
	return int64(h.Rows) * int64(h.Cols)
}

func (h Header) validate() error {
	if h.Precision.Size() == 0 {
		return fmt.Errorf("%w: %v", ErrUnknownPrecision, h.Precision)
	}
	if h.Rows < 0 || h.Cols < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.Rows, h.Cols)
	}
	if int64(h.Cols)*2*int64(h.Precision.Size()) > math.MaxInt32 {
		return fmt.Errorf("%w: %d columns do not fit in a row record", ErrMatrixTooLarge, h.Cols)
	}
	if h.Elements() > maxElements || h.Elements() > maxMatrixBytes/(2*int64(h.Precision.Size())) {
		return fmt.Errorf("%w: %dx%d cannot be allocated", ErrMatrixTooLarge, h.Rows, h.Cols)
	}
	return nil
}

// DecodeHeader reads the five framed header fields from r and returns the header
// together with the number of bytes consumed. The version is not enforced here;
// see Header.CheckVersion.
func DecodeHeader(r io.Reader) (Header, int64, error) {
	var h Header

	version, err := readInt32Field(r, "version")
	if err != nil {
		return Header{}, 0, err
	}
	h.Version = version

	checksum, err := readField(r, "checksum", ChecksumLen)
	if err != nil {
		return Header{}, 0, err
	}
	copy(h.Checksum[:], checksum)

	code, err := readInt32Field(r, "precision")
	if err != nil {
		return Header{}, 0, err
	}
	rows, err := readInt32Field(r, "rows")
	if err != nil {
		return Header{}, 0, err
	}
	cols, err := readInt32Field(r, "cols")
	if err != nil {
		return Header{}, 0, err
	}

	if h.Precision, err = PrecisionFromCode(code); err != nil {
		return Header{}, 0, err
	}
	h.Rows = int(rows)
	h.Cols = int(cols)
	h.DataOffset = HeaderLen
	if err := h.validate(); err != nil {
		return Header{}, 0, err
	}
	return h, HeaderLen, nil
}
