package feko

import (
	"encoding/binary"
	"errors"
	"io"
)

// markerLen is the size of the int32 length written before and after every payload.
const markerLen = 4

type frameMarkers struct {
	prefix int32
	suffix int32
	// short is set when the block ended early but its prefix was read.
	short bool
}

func (m frameMarkers) match(want int) bool {
	return int(m.prefix) == want && int(m.suffix) == want
}

// truncatedMismatch reports a block cut short whose prefix already disagrees
// with want; the wrong length is the cause, not the missing bytes.
func (m frameMarkers) truncatedMismatch(want int) bool {
	return m.short && int(m.prefix) != want
}

// readFrame fills buf with one framed block: prefix, len(buf)-8 payload bytes, suffix.
// The payload length comes from the caller, never from the prefix, so a corrupt marker
// cannot shift the read position. Marker validation is left to the caller. On a short
// read the returned markers carry the prefix if at least markerLen bytes arrived.
func readFrame(r io.Reader, buf []byte) ([]byte, frameMarkers, error) {
	if n, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		var m frameMarkers
		if n >= markerLen {
			m = frameMarkers{prefix: int32(binary.LittleEndian.Uint32(buf[:markerLen])), short: true}
		}
		return nil, m, err
	}
	end := len(buf) - markerLen
	m := frameMarkers{
		prefix: int32(binary.LittleEndian.Uint32(buf[:markerLen])),
		suffix: int32(binary.LittleEndian.Uint32(buf[end:])),
	}
	return buf[markerLen:end], m, nil
}

// readField reads a header field with a fixed payload size.
func readField(r io.Reader, name string, size int) ([]byte, error) {
	payload, m, err := readFrame(r, make([]byte, size+2*markerLen))
	if m.truncatedMismatch(size) {
		return nil, &FieldError{Field: name, Prefix: m.prefix, Want: int32(size), Truncated: true, Err: ErrFrameMismatch}
	}
	if err != nil {
		return nil, &FieldError{Field: name, Want: int32(size), Err: err}
	}
	if !m.match(size) {
		return nil, &FieldError{Field: name, Prefix: m.prefix, Suffix: m.suffix, Want: int32(size), Err: ErrFrameMismatch}
	}
	return payload, nil
}

func readInt32Field(r io.Reader, name string) (int32, error) {
	payload, err := readField(r, name, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(payload)), nil
}
