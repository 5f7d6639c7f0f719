package feko

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Limits constrains decoder memory use.
type Limits struct {
	// MaxElements caps rows*cols. Zero or negative disables the check.
	MaxElements int64
}

func DefaultLimits() Limits {
	return Limits{MaxElements: 1 << 26}
}

// Result is a fully decoded file.
type Result struct {
	Header      Header
	Matrix      *Matrix
	Compression Compression
	// Warnings holds non-fatal conditions such as ErrVersionUnsupported.
	Warnings []error
}

// Decoder runs the header and body decoders over a whole file. It holds no
// per-call state and may be shared between goroutines.
type Decoder struct {
	log    zerolog.Logger
	limits Limits
}

type Option func(*Decoder)

func WithLogger(l zerolog.Logger) Option {
	return func(d *Decoder) { d.log = l }
}

func WithLimits(l Limits) Option {
	return func(d *Decoder) { d.limits = l }
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: zerolog.Nop(), limits: DefaultLimits()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads an uncompressed matrix file from r.
func (d *Decoder) Decode(r io.Reader) (*Result, error) {
	if _, ok := r.(*bytes.Reader); !ok {
		r = bufio.NewReaderSize(r, 64*1024)
	}
	h, _, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	res := &Result{Header: h}
	if err := h.CheckVersion(); err != nil {
		d.log.Warn().Int32("version", h.Version).Int("supported", SupportedVersion).
			Msg("impedance matrix file version is not supported, check output for correctness")
		res.Warnings = append(res.Warnings, err)
	}
	if d.limits.MaxElements > 0 && h.Elements() > d.limits.MaxElements {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrMatrixTooLarge, h.Rows, h.Cols, d.limits.MaxElements)
	}
	d.log.Debug().Int("rows", h.Rows).Int("cols", h.Cols).Stringer("precision", h.Precision).
		Msg("header decoded")

	m, err := DecodeMatrix(r, h)
	if err != nil {
		return nil, err
	}
	res.Matrix = m
	if e := d.log.Debug(); e.Enabled() {
		e.Str("fingerprint", fmt.Sprintf("%016x", m.Fingerprint())).Msg("matrix decoded")
	}
	return res, nil
}

// DecodeBytes decodes an in-memory file, removing a zstd, gzip or zlib layer first.
func (d *Decoder) DecodeBytes(data []byte) (*Result, error) {
	comp := DetectCompression(data)
	if comp != CompNone {
		raw, err := Decompress(data, comp)
		if err != nil {
			// A damaged plain file can look like a compressed one; its own
			// framing error is the useful report.
			res, rawErr := d.Decode(bytes.NewReader(data))
			if rawErr == nil {
				return res, nil
			}
			return nil, fmt.Errorf("feko: decompress %s input: %w", comp, errors.Join(err, rawErr))
		}
		d.log.Debug().Stringer("compression", comp).Int("size", len(raw)).Msg("input decompressed")
		data = raw
	}
	br := bytes.NewReader(data)
	res, err := d.Decode(br)
	if err != nil {
		return nil, err
	}
	res.Compression = comp
	if n := br.Len(); n > 0 {
		d.log.Debug().Int("bytes", n).Msg("trailing data after last row ignored")
	}
	return res, nil
}

// DecodeFile reads the whole file at path and decodes it.
func (d *Decoder) DecodeFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return d.DecodeBytes(data)
}

var defaultDecoder = NewDecoder()

// Decode reads an uncompressed matrix file from r with default limits and no logging.
func Decode(r io.Reader) (*Result, error) { return defaultDecoder.Decode(r) }

// DecodeBytes decodes an in-memory, possibly compressed, matrix file.
func DecodeBytes(data []byte) (*Result, error) { return defaultDecoder.DecodeBytes(data) }

// LoadFile decodes the matrix file at path.
func LoadFile(path string) (*Result, error) { return defaultDecoder.DecodeFile(path) }
