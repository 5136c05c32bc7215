package archive

const (
	tagAbsent  byte = 0
	tagPresent byte = 1
)

// OptionResolver carries the element resolver of a present value.
type OptionResolver[R any] struct {
	Present bool
	Inner   R
}

// OptionLayout returns the header layout of an optional whose payload has
// layout elem, and the payload's offset within that header.
//
// The header is a two-variant tagged union: a tag byte, then the payload at
// the first offset that satisfies elem's alignment. The whole union is
// reserved even for the absent variant so that headers stay fixed-size.
func OptionLayout(elem Layout) (Layout, int) {
	align := elem.alignment()
	payload := alignUp(1, align)
	return Layout{Size: alignUp(payload+elem.Size, align), Align: align}, payload
}

type optional[O, R any] struct {
	elem    Adapter[O, R]
	layout  Layout
	payload int
}

// Optional archives a possibly nil pointer with elem. A nil pointer is
// archived as the absent variant and decodes back to nil.
func Optional[O, R any](elem Adapter[O, R]) Adapter[*O, OptionResolver[R]] {
	l, off := OptionLayout(elem.Layout())
	return optional[O, R]{elem: elem, layout: l, payload: off}
}

func (a optional[O, R]) Layout() Layout {
	return a.layout
}

func (a optional[O, R]) Serialize(s *Serializer, v *O) (OptionResolver[R], error) {
	if v == nil {
		return OptionResolver[R]{}, nil
	}
	r, err := a.elem.Serialize(s, *v)
	if err != nil {
		return OptionResolver[R]{}, err
	}
	return OptionResolver[R]{Present: true, Inner: r}, nil
}

func (a optional[O, R]) Resolve(v *O, pos Pos, r OptionResolver[R], out []byte) {
	if !r.Present {
		out[0] = tagAbsent
		return
	}
	if v == nil {
		panic("archive: present option resolver resolved against a nil value")
	}
	out[0] = tagPresent
	size := a.elem.Layout().Size
	a.elem.Resolve(*v, pos+Pos(a.payload), r.Inner, out[a.payload:a.payload+size])
}

func (a optional[O, R]) Deserialize(v View) (*O, error) {
	ov, err := NewOptionView(v, a.elem.Layout())
	if err != nil {
		return nil, err
	}
	payload, ok := ov.Value()
	if !ok {
		return nil, nil
	}
	value, err := a.elem.Deserialize(payload)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
