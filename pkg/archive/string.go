package archive

// StringResolver records where a string's bytes were written.
type StringResolver struct {
	Pos Pos
}

// SerializeString copies the bytes of str into the archive.
func SerializeString(s *Serializer, str string) (StringResolver, error) {
	pos, err := s.WriteString(str)
	if err != nil {
		return StringResolver{}, err
	}
	return StringResolver{Pos: pos}, nil
}

// ResolveString writes the {rel, len} header for str at pos.
func ResolveString(str string, pos Pos, r StringResolver, out []byte) {
	putRelHeader(out, pos, r.Pos, len(str))
}

// DeserializeString copies the archived string at v into a Go string.
func DeserializeString(v View) (string, error) {
	sv, err := NewStringView(v)
	if err != nil {
		return "", err
	}
	return sv.String(), nil
}

// StringLayout is the header layout of every archived string.
func StringLayout() Layout {
	return relLayout
}

type text[T any] struct {
	str  func(T) string
	from func(string) T
}

// String archives a plain Go string.
func String() Adapter[string, StringResolver] {
	return text[string]{
		str:  func(s string) string { return s },
		from: func(s string) string { return s },
	}
}

// Text archives a string-like domain value as a plain archived string. str
// extracts the text on encode; from rebuilds the value on decode and must
// accept any UTF-8 input.
func Text[T any](str func(T) string, from func(string) T) Adapter[T, StringResolver] {
	return text[T]{str: str, from: from}
}

func (t text[T]) Layout() Layout {
	return relLayout
}

func (t text[T]) Serialize(s *Serializer, v T) (StringResolver, error) {
	return SerializeString(s, t.str(v))
}

func (t text[T]) Resolve(v T, pos Pos, r StringResolver, out []byte) {
	ResolveString(t.str(v), pos, r, out)
}

func (t text[T]) Deserialize(v View) (T, error) {
	str, err := DeserializeString(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.from(str), nil
}
