package archive

// SequenceResolver records where a sequence's element headers were written.
type SequenceResolver struct {
	Pos Pos
}

type sequence[O, R any] struct {
	elem Adapter[O, R]
}

// Sequence archives a slice by archiving each element with elem. Element
// headers are stored contiguously in order. Decoded slices are never nil.
func Sequence[O, R any](elem Adapter[O, R]) Adapter[[]O, SequenceResolver] {
	return sequence[O, R]{elem: elem}
}

func (a sequence[O, R]) Layout() Layout {
	return relLayout
}

func (a sequence[O, R]) Serialize(s *Serializer, vs []O) (SequenceResolver, error) {
	if err := s.acquireScratch(len(vs)); err != nil {
		return SequenceResolver{}, err
	}
	defer s.releaseScratch(len(vs))

	resolvers := make([]R, len(vs))
	for i := range vs {
		r, err := a.elem.Serialize(s, vs[i])
		if err != nil {
			return SequenceResolver{}, err
		}
		resolvers[i] = r
	}

	l := a.elem.Layout()
	arr, err := s.ReserveArray(l, len(vs))
	if err != nil {
		return SequenceResolver{}, err
	}
	stride := l.Stride()
	for i := range vs {
		pos := arr + Pos(i*stride)
		a.elem.Resolve(vs[i], pos, resolvers[i], s.Header(pos, l))
	}
	return SequenceResolver{Pos: arr}, nil
}

func (a sequence[O, R]) Resolve(vs []O, pos Pos, r SequenceResolver, out []byte) {
	putRelHeader(out, pos, r.Pos, len(vs))
}

func (a sequence[O, R]) Deserialize(v View) ([]O, error) {
	sv, err := NewSequenceView(v, a.elem.Layout())
	if err != nil {
		return nil, err
	}
	out := make([]O, sv.Len())
	for i := range out {
		if out[i], err = a.elem.Deserialize(sv.At(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
