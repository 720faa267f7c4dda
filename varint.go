package onlinedawg

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrInvalidData is returned when a stream is not a DAWG or its contents
	// are inconsistent.
	ErrInvalidData = errors.New("dawg: invalid data")

	// ErrUnexpectedEOF is returned when a stream ends in the middle of a
	// value. It wraps io.ErrUnexpectedEOF.
	ErrUnexpectedEOF = fmt.Errorf("dawg: unexpected end of stream: %w", io.ErrUnexpectedEOF)
)

// varintWriter writes unsigned LEB128 values: 7 low bits per byte, with
// the continuation bit set on all but the final byte.
type varintWriter struct {
	w       io.Writer
	buf     [binary.MaxVarintLen64]byte
	written int64
	err     error
}

func (w *varintWriter) writeUnsigned(n uint64) {
	w.write(w.buf[:binary.PutUvarint(w.buf[:], n)])
}

func (w *varintWriter) writeInt(n int) {
	w.writeUnsigned(uint64(n))
}

func (w *varintWriter) writeByte(b byte) {
	w.buf[0] = b
	w.write(w.buf[:1])
}

// write keeps the first error; later writes become no-ops.
func (w *varintWriter) write(data []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(data)
	w.written += int64(n)
	w.err = err
}

// varintReader reads what varintWriter writes, turning a short stream into
// ErrUnexpectedEOF.
type varintReader struct {
	r io.ByteReader
}

func newVarintReader(r io.Reader) *varintReader {
	if br, ok := r.(io.ByteReader); ok {
		return &varintReader{br}
	}
	return &varintReader{bufio.NewReader(r)}
}

func (r *varintReader) readUnsigned() (uint64, error) {
	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, eofError(err)
	}
	return n, nil
}

// readInt reads a varint that must fit in an int no larger than limit.
func (r *varintReader) readInt(limit int) (int, error) {
	n, err := r.readUnsigned()
	if err != nil {
		return 0, err
	}
	if n > uint64(limit) {
		return 0, fmt.Errorf("%w: value %d out of range", ErrInvalidData, n)
	}
	return int(n), nil
}

func (r *varintReader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, eofError(err)
	}
	return b, nil
}

func (r *varintReader) readFull(data []byte) error {
	for i := range data {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		data[i] = b
	}
	return nil
}

func eofError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	// either the reader failed or the varint overflowed 64 bits
	return fmt.Errorf("%w: %v", ErrInvalidData, err)
}

// byteSeeker reads bytes from a given offset of an io.ReaderAt, keeping a
// small window of the data in memory.
type byteSeeker struct {
	io.ReaderAt
	p      int64
	base   int64
	buffer []byte
	n      int
}

const seekerWindow = 512

func newByteSeeker(r io.ReaderAt) *byteSeeker {
	return &byteSeeker{ReaderAt: r, buffer: make([]byte, seekerWindow)}
}

// ReadByte implements io.ByteReader so the seeker can feed binary.ReadUvarint.
func (r *byteSeeker) ReadByte() (byte, error) {
	if r.p < r.base || r.p >= r.base+int64(r.n) {
		n, err := r.ReadAt(r.buffer, r.p)
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		r.base, r.n = r.p, n
	}
	b := r.buffer[r.p-r.base]
	r.p++
	return b, nil
}

func (r *byteSeeker) SeekTo(offset int64) {
	r.p = offset
}

func (r *byteSeeker) Tell() int64 {
	return r.p
}

func (r *byteSeeker) readUnsigned() (uint64, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, eofError(err)
	}
	return n, nil
}

// skipUnsigned skips count varints.
func (r *byteSeeker) skipUnsigned(count int) error {
	for c := 0; c < count; c++ {
		for {
			b, err := r.ReadByte()
			if err != nil {
				return eofError(err)
			}
			if b < 0x80 {
				break
			}
		}
	}
	return nil
}

// maxCount bounds the counts read from a stream so that a corrupt header
// cannot make a reader allocate without limit.
const maxCount = math.MaxInt32

// preallocLimit caps capacity reserved up front from counts in a header.
const preallocLimit = 1 << 20
