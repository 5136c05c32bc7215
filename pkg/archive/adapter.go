package archive

// Unit is the resolver of adapters whose header needs nothing from Serialize.
type Unit struct{}

// Adapter archives values of type O. R is the resolver handed from Serialize
// to Resolve within a single encode.
type Adapter[O, R any] interface {
	// Layout is the fixed size and alignment of the archived header.
	Layout() Layout
	// Serialize writes any variable-length payload for v and returns what
	// Resolve needs to finish the header. All fallible work happens here.
	Serialize(s *Serializer, v O) (R, error)
	// Resolve writes the header for v into out, which is Layout().Size bytes
	// long and located at pos.
	Resolve(v O, pos Pos, r R, out []byte)
	// Deserialize rebuilds an owned value from the header at v.
	Deserialize(v View) (O, error)
}

// Encode archives v into a new buffer. The root header is the last
// a.Layout().Size bytes of the result. On error no buffer is returned.
func Encode[O, R any](a Adapter[O, R], v O, opts ...Option) ([]byte, error) {
	s := NewSerializer(opts...)
	if _, err := EncodeTo(s, a, v); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// EncodeTo archives v into s and returns the position of its header. If
// encoding fails, s is truncated back to where it started.
func EncodeTo[O, R any](s *Serializer, a Adapter[O, R], v O) (Pos, error) {
	start := len(s.buf)
	r, err := a.Serialize(s, v)
	if err != nil {
		s.buf = s.buf[:start]
		return 0, err
	}
	l := a.Layout()
	pos, err := s.Reserve(l)
	if err != nil {
		s.buf = s.buf[:start]
		return 0, err
	}
	a.Resolve(v, pos, r, s.Header(pos, l))
	return pos, nil
}

// Root returns the view of the root header of buf.
func Root(buf []byte, l Layout) (View, error) {
	if len(buf) < l.Size {
		return View{}, NewDecodeError(CorruptLength, 0, "buffer of %d bytes is smaller than root header of %d", len(buf), l.Size)
	}
	return View{buf: buf, pos: Pos(len(buf) - l.Size)}, nil
}

// Decode rebuilds the root value of buf.
func Decode[O, R any](a Adapter[O, R], buf []byte) (O, error) {
	root, err := Root(buf, a.Layout())
	if err != nil {
		var zero O
		return zero, err
	}
	return a.Deserialize(root)
}
