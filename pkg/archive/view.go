package archive

import "math"

// View addresses an archived header inside a buffer. All reads are bounds
// checked and report CorruptLength instead of panicking.
type View struct {
	buf []byte
	pos Pos
}

// NewView returns a view of the header at pos in buf.
func NewView(buf []byte, pos Pos) View {
	return View{buf: buf, pos: pos}
}

// Pos returns the view's position in its buffer.
func (v View) Pos() Pos {
	return v.pos
}

// Buffer returns the underlying archive buffer.
func (v View) Buffer() []byte {
	return v.buf
}

// At returns a view off bytes past this one.
func (v View) At(off int) View {
	return View{buf: v.buf, pos: v.pos + Pos(off)}
}

// Bytes returns the n bytes starting at the view without copying them.
func (v View) Bytes(n int) ([]byte, error) {
	return sliceAt(v.buf, int(v.pos), n)
}

func sliceAt(buf []byte, start, n int) ([]byte, error) {
	if start < 0 || n < 0 || start > len(buf) || n > len(buf)-start {
		return nil, NewDecodeError(CorruptLength, Pos(start), "need %d bytes, buffer holds %d", n, len(buf))
	}
	return buf[start : start+n : start+n], nil
}

func (v View) Uint8() (uint8, error) {
	b, err := v.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (v View) Uint16() (uint16, error) {
	b, err := v.Bytes(2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

func (v View) Uint32() (uint32, error) {
	b, err := v.Bytes(4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

func (v View) Int32() (int32, error) {
	u, err := v.Uint32()
	return int32(u), err
}

func (v View) Uint64() (uint64, error) {
	b, err := v.Bytes(8)
	if err != nil {
		return 0, err
	}
	return le.Uint64(b), nil
}

func (v View) Int64() (int64, error) {
	u, err := v.Uint64()
	return int64(u), err
}

func (v View) Float32() (float32, error) {
	u, err := v.Uint32()
	return math.Float32frombits(u), err
}

func (v View) Float64() (float64, error) {
	u, err := v.Uint64()
	return math.Float64frombits(u), err
}

func (v View) Int128() (Int128, error) {
	b, err := v.Bytes(16)
	if err != nil {
		return Int128{}, err
	}
	return readInt128(b), nil
}

// relative reads a {rel int32, len uint32} header and returns the absolute
// start of its payload and the element count.
func (v View) relative() (start int, n int, err error) {
	b, err := v.Bytes(relLayout.Size)
	if err != nil {
		return 0, 0, err
	}
	rel := int32(le.Uint32(b[0:4]))
	count := le.Uint32(b[4:8])
	start = int(v.pos) + int(rel)
	if start < 0 || start > len(v.buf) {
		return 0, 0, NewDecodeError(CorruptLength, v.pos, "offset %d points outside buffer of %d bytes", rel, len(v.buf))
	}
	return start, int(count), nil
}

// StringView is an archived string read in place.
type StringView struct {
	data []byte
}

// NewStringView validates the string header at v.
func NewStringView(v View) (StringView, error) {
	start, n, err := v.relative()
	if err != nil {
		return StringView{}, err
	}
	data, err := sliceAt(v.buf, start, n)
	if err != nil {
		return StringView{}, NewDecodeError(CorruptLength, v.pos, "string of %d bytes at %d overruns buffer", n, start)
	}
	return StringView{data: data}, nil
}

// Bytes returns the archived UTF-8 bytes. The slice aliases the archive buffer.
func (s StringView) Bytes() []byte {
	return s.data
}

func (s StringView) Len() int {
	return len(s.data)
}

// String copies the archived bytes into a Go string.
func (s StringView) String() string {
	return string(s.data)
}

// SequenceView is an archived sequence read in place.
type SequenceView struct {
	buf    []byte
	start  int
	n      int
	stride int
}

// NewSequenceView validates the sequence header at v, whose elements have
// layout elem.
func NewSequenceView(v View, elem Layout) (SequenceView, error) {
	start, n, err := v.relative()
	if err != nil {
		return SequenceView{}, err
	}
	stride := elem.Stride()
	avail := len(v.buf) - start
	if (stride > 0 && n > avail/stride) || (stride == 0 && n > len(v.buf)) {
		return SequenceView{}, NewDecodeError(CorruptLength, v.pos, "%d elements of %d bytes at %d overrun buffer", n, stride, start)
	}
	return SequenceView{buf: v.buf, start: start, n: n, stride: stride}, nil
}

func (s SequenceView) Len() int {
	return s.n
}

// At returns the view of element i. It panics if i is out of range, like a
// slice index.
func (s SequenceView) At(i int) View {
	if i < 0 || i >= s.n {
		panic("archive: sequence index out of range")
	}
	return View{buf: s.buf, pos: Pos(s.start + i*s.stride)}
}

// OptionView is an archived optional read in place.
type OptionView struct {
	present bool
	value   View
}

// NewOptionView validates the tag of the optional header at v, whose payload
// has layout elem.
func NewOptionView(v View, elem Layout) (OptionView, error) {
	tag, err := v.Uint8()
	if err != nil {
		return OptionView{}, err
	}
	switch tag {
	case tagAbsent:
		return OptionView{}, nil
	case tagPresent:
		_, off := OptionLayout(elem)
		return OptionView{present: true, value: v.At(off)}, nil
	default:
		return OptionView{}, NewDecodeError(InvalidTag, v.pos, "option tag %d", tag)
	}
}

func (o OptionView) Present() bool {
	return o.present
}

// Value returns the payload view and whether it is present.
func (o OptionView) Value() (View, bool) {
	return o.value, o.present
}
