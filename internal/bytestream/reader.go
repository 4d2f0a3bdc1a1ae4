// Package bytestream provides positional, seekable reads over an in-memory
// buffer: the common substrate every binary-format decoder in this module
// composes on (IRD container, ISO9660 PVD, UDF volume descriptors).
package bytestream

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Reader is a random-access cursor over a fixed byte slice. It never
// allocates beyond what callers ask for and never blocks: the blob is
// already fully resident in memory by the time a Reader wraps it.
type Reader struct {
	data []byte
	pos  int64
}

// New wraps data for positional reads starting at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total size of the underlying buffer.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

// Pos returns the current read offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Seek moves the cursor to an absolute byte offset. It does not validate
// against Len: a subsequent read past the end fails with the usual
// short-read error.
func (r *Reader) Seek(abs int64) {
	r.pos = abs
}

// WithOffset seeks to abs, runs fn, then restores the prior position
// regardless of what fn did to the cursor.
func (r *Reader) WithOffset(abs int64, fn func(*Reader) error) error {
	saved := r.pos
	r.pos = abs
	err := fn(r)
	r.pos = saved
	return err
}

func (r *Reader) need(n int) ([]byte, error) {
	if r.pos < 0 || r.pos+int64(n) > int64(len(r.data)) {
		return nil, fmt.Errorf("bytestream: short read at offset %d (need %d bytes, have %d)", r.pos, n, int64(len(r.data))-r.pos)
	}
	b := r.data[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE() (uint16, error) {
	b, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.need(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadFixedString reads a count-byte ASCII field and strips trailing
// space (0x20) and NUL (0x00) padding.
func (r *Reader) ReadFixedString(count int) (string, error) {
	b, err := r.need(count)
	if err != nil {
		return "", err
	}
	s := strings.TrimRight(string(b), " \x00")
	return s, nil
}

// ReadU8PrefixedString reads a u8 length prefix followed by that many
// bytes of UTF-8 text.
func (r *Reader) ReadU8PrefixedString() (string, error) {
	n, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := r.need(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
