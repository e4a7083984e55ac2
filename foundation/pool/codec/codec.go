// Package codec provides the deterministic binary encoding used to persist
// pool state and to carry instructions. Integers are little-endian with a
// fixed width, strings and collections carry a 4 byte length prefix, and
// optional values carry a single byte presence tag.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// Set of errors returned while decoding.
var (
	ErrTruncatedInput = errors.New("truncated input")
	ErrInvalidTag     = errors.New("invalid tag")
	ErrInvalidUTF8    = errors.New("invalid utf-8 string")
	ErrTrailingBytes  = errors.New("not all bytes read")
)

// KeySize is the number of raw bytes used by an identity.
const KeySize = 32

// =============================================================================

// Writer accumulates encoded values in order.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter constructs an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteU16 writes a 2 byte little-endian value.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32 writes a 4 byte little-endian value.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteU64 writes an 8 byte little-endian value.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteI64 writes the two's complement bits of v as an unsigned value.
func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteOption writes the presence tag of an optional value. The caller
// writes the payload afterwards when present is true.
func (w *Writer) WriteOption(present bool) {
	w.WriteBool(present)
}

// WriteString writes the byte length followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteBytes writes the byte length followed by the raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf.Write(b)
}

// WriteKey writes the 32 raw bytes of an identity with no prefix.
func (w *Writer) WriteKey(k [KeySize]byte) {
	w.buf.Write(k[:])
}

// WriteLen writes a collection count.
func (w *Writer) WriteLen(n int) {
	w.WriteU32(uint32(n))
}

// =============================================================================

// Reader walks a byte slice decoding values in order.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential decoding. The slice is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Finish reports an error if unread bytes remain.
func (r *Reader) Finish() error {
	if r.Remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// next returns the next n bytes and advances the cursor.
func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrTruncatedInput
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a 2 byte little-endian value.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a 4 byte little-endian value.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads an 8 byte little-endian value.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a value written by WriteI64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadBool reads a byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	if err != nil {
		return false, err
	}

	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, ErrInvalidTag
}

// ReadOption reads the presence tag of an optional value.
func (r *Reader) ReadOption() (bool, error) {
	return r.ReadBool()
}

// ReadString reads a length prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadBytes reads a length prefixed byte slice. The returned slice is a copy.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	// Compare as uint64 so a huge prefix can't wrap a 32 bit int.
	if uint64(n) > uint64(r.Remaining()) {
		return nil, ErrTruncatedInput
	}

	b, err := r.next(int(n))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// ReadKey reads exactly 32 raw bytes.
func (r *Reader) ReadKey() ([KeySize]byte, error) {
	var k [KeySize]byte

	b, err := r.next(KeySize)
	if err != nil {
		return k, err
	}
	copy(k[:], b)
	return k, nil
}

// ReadLen reads a collection count.
func (r *Reader) ReadLen() (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
