package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fekomat/fekomat/export"
	"github.com/fekomat/fekomat/feko"
)

// Convert takes impedance matrix file bytes and returns them re-encoded as kind.
func Convert(data []byte, kind export.Kind, opts export.Options) ([]byte, *feko.Result, error) {
	return ConvertWith(feko.NewDecoder(), data, kind, opts)
}

// ConvertWith is Convert using a caller-configured decoder.
func ConvertWith(dec *feko.Decoder, data []byte, kind export.Kind, opts export.Options) ([]byte, *feko.Result, error) {
	res, err := dec.DecodeBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode impedance matrix: %w", err)
	}
	var out bytes.Buffer
	if err := export.Write(&out, res.Matrix, kind, opts); err != nil {
		return nil, res, fmt.Errorf("write %s: %w", kind, err)
	}
	return out.Bytes(), res, nil
}

// Inspect decodes only the header of an impedance matrix file.
func Inspect(data []byte) (feko.Header, error) {
	if c := feko.DetectCompression(data); c != feko.CompNone {
		raw, err := feko.Decompress(data, c)
		if err != nil {
			h, _, rawErr := feko.DecodeHeader(bytes.NewReader(data))
			if rawErr == nil {
				return h, nil
			}
			return feko.Header{}, fmt.Errorf("decompress %s input: %w", c, errors.Join(err, rawErr))
		}
		data = raw
	}
	h, _, err := feko.DecodeHeader(bytes.NewReader(data))
	if err != nil {
		return feko.Header{}, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
