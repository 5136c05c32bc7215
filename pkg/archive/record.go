package archive

import "fmt"

// Field binds one field of record type S to the adapter that archives it.
// Fields are built with FieldOf.
type Field[S any] interface {
	Name() string
	Layout() Layout

	serialize(s *Serializer, src *S) (any, error)
	resolve(src *S, pos Pos, r any, out []byte)
	deserialize(v View, dst *S) error
}

type field[S, O, R any] struct {
	name    string
	get     func(*S) *O
	adapter Adapter[O, R]
}

// FieldOf declares a record field named name, reached through get and archived
// with a.
func FieldOf[S, O, R any](name string, get func(*S) *O, a Adapter[O, R]) Field[S] {
	return field[S, O, R]{name: name, get: get, adapter: a}
}

func (f field[S, O, R]) Name() string {
	return f.name
}

func (f field[S, O, R]) Layout() Layout {
	return f.adapter.Layout()
}

func (f field[S, O, R]) serialize(s *Serializer, src *S) (any, error) {
	r, err := f.adapter.Serialize(s, *f.get(src))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (f field[S, O, R]) resolve(src *S, pos Pos, r any, out []byte) {
	f.adapter.Resolve(*f.get(src), pos, r.(R), out)
}

func (f field[S, O, R]) deserialize(v View, dst *S) error {
	value, err := f.adapter.Deserialize(v)
	if err != nil {
		return err
	}
	*f.get(dst) = value
	return nil
}

// RecordResolver holds one resolver per record field.
type RecordResolver struct {
	fields []any
}

// Record archives a struct as a C-like sequence of field headers: each field
// starts at the next offset aligned for it, and the record is padded to its
// largest alignment.
type Record[S any] struct {
	fields  []Field[S]
	offsets []int
	index   map[string]int
	layout  Layout
}

// NewRecord lays out fields in declaration order. It panics on duplicate names.
func NewRecord[S any](fields ...Field[S]) *Record[S] {
	rec := &Record[S]{
		fields:  fields,
		offsets: make([]int, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	end, maxAlign := 0, 1
	for i, f := range fields {
		if _, dup := rec.index[f.Name()]; dup {
			panic(fmt.Sprintf("archive: duplicate record field %q", f.Name()))
		}
		rec.index[f.Name()] = i

		l := f.Layout()
		align := l.alignment()
		end = alignUp(end, align)
		rec.offsets[i] = end
		end += l.Size
		maxAlign = max(maxAlign, align)
	}
	rec.layout = Layout{Size: alignUp(end, maxAlign), Align: maxAlign}
	return rec
}

// Offset returns the byte offset of the named field within the record header.
func (r *Record[S]) Offset(name string) (int, bool) {
	i, ok := r.index[name]
	if !ok {
		return 0, false
	}
	return r.offsets[i], true
}

func (r *Record[S]) Layout() Layout {
	return r.layout
}

func (r *Record[S]) Serialize(s *Serializer, v S) (RecordResolver, error) {
	if err := s.acquireScratch(len(r.fields)); err != nil {
		return RecordResolver{}, err
	}
	defer s.releaseScratch(len(r.fields))

	resolvers := make([]any, len(r.fields))
	for i, f := range r.fields {
		res, err := f.serialize(s, &v)
		if err != nil {
			return RecordResolver{}, err
		}
		resolvers[i] = res
	}
	return RecordResolver{fields: resolvers}, nil
}

func (r *Record[S]) Resolve(v S, pos Pos, res RecordResolver, out []byte) {
	for i, f := range r.fields {
		off := r.offsets[i]
		size := f.Layout().Size
		f.resolve(&v, pos+Pos(off), res.fields[i], out[off:off+size])
	}
}

func (r *Record[S]) Deserialize(v View) (S, error) {
	var dst S
	if _, err := v.Bytes(r.layout.Size); err != nil {
		return dst, err
	}
	for i, f := range r.fields {
		if err := f.deserialize(v.At(r.offsets[i]), &dst); err != nil {
			var zero S
			return zero, fmt.Errorf("field %s: %w", f.Name(), err)
		}
	}
	return dst, nil
}
