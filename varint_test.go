package onlinedawg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintWriter(t *testing.T) {
	for _, tc := range []struct {
		value    uint64
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{1 << 21, []byte{0x80, 0x80, 0x80, 0x01}},
	} {
		var buf bytes.Buffer
		w := &varintWriter{w: &buf}
		w.writeUnsigned(tc.value)
		require.NoError(t, w.err)
		assert.Equal(t, tc.expected, buf.Bytes(), "value %d", tc.value)
		assert.Equal(t, int64(len(tc.expected)), w.written)
	}
}

type failingWriter struct {
	calls int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestVarintWriterKeepsFirstError(t *testing.T) {
	fw := &failingWriter{}
	w := &varintWriter{w: fw}
	w.writeUnsigned(1)
	w.writeByte(2)
	w.write([]byte("abc"))

	assert.EqualError(t, w.err, "disk full")
	assert.Equal(t, 1, fw.calls)
	assert.Equal(t, int64(0), w.written)
}

func TestVarintReader(t *testing.T) {
	var buf bytes.Buffer
	w := &varintWriter{w: &buf}
	values := []uint64{0, 5, 127, 128, 300, 1 << 40}
	for _, v := range values {
		w.writeUnsigned(v)
	}
	w.writeByte(0xff)

	r := newVarintReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, err := r.readUnsigned()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	b, err := r.readByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), b)

	_, err = r.readUnsigned()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestVarintReaderErrors(t *testing.T) {
	// continuation bit set on the final byte
	r := newVarintReader(bytes.NewReader([]byte{0x80}))
	_, err := r.readUnsigned()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	// more than 64 bits
	r = newVarintReader(bytes.NewReader(bytes.Repeat([]byte{0xff}, 11)))
	_, err = r.readUnsigned()
	assert.ErrorIs(t, err, ErrInvalidData)

	r = newVarintReader(bytes.NewReader([]byte{0x0a}))
	_, err = r.readInt(9)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestByteSeeker(t *testing.T) {
	// enough values to span several windows
	var buf bytes.Buffer
	w := &varintWriter{w: &buf}
	var positions []int64
	for i := 0; i < 1000; i++ {
		positions = append(positions, w.written)
		w.writeUnsigned(uint64(i * 37))
	}
	positions = append(positions, w.written)
	require.Greater(t, buf.Len(), 2*seekerWindow)

	s := newByteSeeker(bytes.NewReader(buf.Bytes()))
	for _, i := range []int{999, 0, 500, 13, 14, 998} {
		s.SeekTo(positions[i])
		got, err := s.readUnsigned()
		require.NoError(t, err)
		assert.Equal(t, uint64(i*37), got)
		assert.Equal(t, positions[i+1], s.Tell())
	}

	s.SeekTo(positions[10])
	require.NoError(t, s.skipUnsigned(90))
	got, err := s.readUnsigned()
	require.NoError(t, err)
	assert.Equal(t, uint64(100*37), got)

	s.SeekTo(int64(buf.Len()))
	_, err = s.readUnsigned()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
	assert.ErrorIs(t, s.skipUnsigned(1), ErrUnexpectedEOF)
}
