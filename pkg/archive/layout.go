package archive

import "encoding/binary"

var le = binary.LittleEndian

// Pos is a byte position inside an archive buffer. It is only meaningful for the
// buffer it was produced from or read out of.
type Pos int

// Layout describes the fixed size and alignment of an archived header.
// Align must be a power of two; zero is treated as one.
type Layout struct {
	Size  int
	Align int
}

// Stride is the distance between two consecutive headers in a contiguous array.
func (l Layout) Stride() int {
	return alignUp(l.Size, l.alignment())
}

func (l Layout) alignment() int {
	if l.Align < 1 {
		return 1
	}
	return l.Align
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// relLayout is the header shared by strings and sequences: an offset relative
// to the header itself followed by an element count.
var relLayout = Layout{Size: 8, Align: 4}

func putRelHeader(out []byte, from, to Pos, n int) {
	le.PutUint32(out[0:4], uint32(int32(to-from)))
	le.PutUint32(out[4:8], uint32(n))
}
