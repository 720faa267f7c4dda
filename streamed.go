package onlinedawg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/exp/mmap"
)

/* FILE FORMAT (DAWG.2)
- 6 bytes: "DAWG.2"
- the DAWG.1 header, from the charset up to and including the starting node id
- 8 bytes: little endian offset of the seek index from the start of the stream
- the nodes, exactly as in DAWG.1
- seek index:
	- varint: interval
	- varint: number of entries
	- for each entry, varint: distance from the previous entry (the first
	  entry counts from the start of the stream)

Entry i holds the position of node i*interval.
*/

var errClosed = errors.New("dawg: lookup on a closed graph")

// DefaultSeekInterval is the number of nodes between two seek index
// entries used by the command line tool.
const DefaultSeekInterval = 32

// WriteStreamed writes the graph to an io.Writer in the DAWG.2 format,
// recording the position of every interval-th node. Returns the number of
// bytes written.
func (g *Graph) WriteStreamed(w io.Writer, interval int) (int64, error) {
	if interval < 1 {
		return 0, fmt.Errorf("dawg: seek interval must be positive, got %d", interval)
	}

	l := g.layout()

	var head bytes.Buffer
	hw := &varintWriter{w: &head}
	hw.write([]byte(magicV2))
	l.writeHeader(hw, g)

	var body bytes.Buffer
	bw := &varintWriter{w: &body}
	positions := make([]int64, 0, len(l.nodes)/interval+1)
	for id, n := range l.nodes {
		if id%interval == 0 {
			positions = append(positions, bw.written)
		}
		l.writeNode(bw, g, n)
	}

	bodyStart := int64(head.Len()) + 8
	var offset [8]byte
	binary.LittleEndian.PutUint64(offset[:], uint64(bodyStart+int64(body.Len())))

	out := &varintWriter{w: w}
	out.write(head.Bytes())
	out.write(offset[:])
	out.write(body.Bytes())
	out.writeInt(interval)
	out.writeInt(len(positions))
	prev := int64(0)
	for _, p := range positions {
		out.writeUnsigned(uint64(bodyStart + p - prev))
		prev = bodyStart + p
	}

	return out.written, out.err
}

// Streamed answers lookups directly from a DAWG.2 stream, keeping only the
// charset and the seek index in memory. It is not safe for concurrent use,
// and must be closed to release the underlying reader.
type Streamed struct {
	r             io.ReaderAt
	seeker        *byteSeeker
	charset       []rune
	seekIndex     []int64
	interval      int
	starting      int
	wordCount     int
	nodeCount     int
	edgeCount     int
	containsEmpty bool
}

var _ Finder = (*Streamed)(nil)

// OpenStreamed maps a DAWG.2 file into memory and reads it in place.
func OpenStreamed(filename string) (*Streamed, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}

	d, err := ReadStreamed(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// ReadStreamed returns a Streamed graph that accesses the DAWG.2 data
// in-place using the given io.ReaderAt. Closing it closes r when r is an
// io.Closer.
func ReadStreamed(r io.ReaderAt) (*Streamed, error) {
	seeker := newByteSeeker(r)
	vr := &varintReader{seeker}
	if err := readMagic(vr, magicV2); err != nil {
		return nil, err
	}
	h, err := readHeader(vr)
	if err != nil {
		return nil, err
	}

	var offset [8]byte
	if err := vr.readFull(offset[:]); err != nil {
		return nil, err
	}
	seeker.SeekTo(int64(binary.LittleEndian.Uint64(offset[:])))

	interval, err := vr.readInt(maxCount)
	if err != nil {
		return nil, err
	}
	if interval == 0 {
		return nil, fmt.Errorf("%w: seek interval is zero", ErrInvalidData)
	}
	entries, err := vr.readInt(h.nodeCount)
	if err != nil {
		return nil, err
	}
	if entries*interval < h.nodeCount {
		return nil, fmt.Errorf("%w: seek index has %d entries for %d nodes", ErrInvalidData, entries, h.nodeCount)
	}

	d := &Streamed{
		r:             r,
		seeker:        seeker,
		charset:       h.charset,
		seekIndex:     make([]int64, 0, min(entries, preallocLimit)),
		interval:      interval,
		starting:      h.starting,
		wordCount:     h.wordCount,
		nodeCount:     h.nodeCount,
		edgeCount:     h.edgeCount,
		containsEmpty: h.containsEmpty,
	}

	var pos int64
	for i := 0; i < entries; i++ {
		delta, err := vr.readUnsigned()
		if err != nil {
			return nil, err
		}
		pos += int64(delta)
		d.seekIndex = append(d.seekIndex, pos)
	}

	return d, nil
}

// Contains returns true if value is in the graph. A read error counts as
// not found; use Lookup to tell the two apart.
func (d *Streamed) Contains(value string) bool {
	found, err := d.Lookup(value)
	return err == nil && found
}

// Lookup returns true if value is in the graph.
func (d *Streamed) Lookup(value string) (bool, error) {
	if d.seeker == nil {
		return false, errClosed
	}
	if value == "" {
		return d.containsEmpty, nil
	}
	if !utf8.ValidString(value) {
		return false, nil
	}

	node := d.starting
	accepting := false
	for _, c := range value {
		next, acc, ok, err := d.followEdge(node, c)
		if err != nil || !ok {
			return false, err
		}
		node, accepting = next, acc
	}
	return accepting, nil
}

// followEdge finds the edge for c out of node by seeking to the closest
// indexed node and skipping forward.
func (d *Streamed) followEdge(node int, c rune) (next int, accepting, ok bool, err error) {
	entry := node / d.interval
	if entry >= len(d.seekIndex) {
		entry = len(d.seekIndex) - 1
	}
	d.seeker.SeekTo(d.seekIndex[entry])

	for cur := entry * d.interval; cur < node; cur++ {
		count, err := d.seeker.readUnsigned()
		if err != nil {
			return 0, false, false, err
		}
		if err := d.seeker.skipUnsigned(int(count) * 2); err != nil {
			return 0, false, false, err
		}
	}

	count, err := d.seeker.readUnsigned()
	if err != nil {
		return 0, false, false, err
	}
	for e := uint64(0); e < count; e++ {
		ch, acc, target, err := d.readEdge()
		if err != nil {
			return 0, false, false, err
		}
		if ch == c {
			return target, acc, true, nil
		}
		if ch > c {
			break
		}
	}
	return 0, false, false, nil
}

func (d *Streamed) readEdge() (rune, bool, int, error) {
	h := header{charset: d.charset, nodeCount: d.nodeCount}
	return h.readEdge(d.seeker.readUnsigned)
}

// WordCount returns the number of words in the graph.
func (d *Streamed) WordCount() int {
	return d.wordCount
}

// NodeCount returns the number of nodes in the graph.
func (d *Streamed) NodeCount() int {
	return d.nodeCount
}

// EdgeCount returns the number of edges in the graph.
func (d *Streamed) EdgeCount() int {
	return d.edgeCount
}

// MemoryUsage returns the approximate number of bytes held in memory; the
// nodes themselves stay in the stream.
func (d *Streamed) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*d)) +
		int64(unsafe.Sizeof(*d.seeker)) + seekerWindow +
		int64(cap(d.seekIndex))*8 +
		int64(cap(d.charset))*4
}

// Close releases the underlying reader.
func (d *Streamed) Close() error {
	r := d.r
	d.r, d.seeker = nil, nil
	if closer, ok := r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
