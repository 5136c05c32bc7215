package archive

import "math"

// fixed archives a value with no indirection: the header is the value.
type fixed[T any] struct {
	layout Layout
	put    func([]byte, T)
	get    func(View) (T, error)
}

func (f fixed[T]) Layout() Layout {
	return f.layout
}

func (f fixed[T]) Serialize(*Serializer, T) (Unit, error) {
	return Unit{}, nil
}

func (f fixed[T]) Resolve(v T, _ Pos, _ Unit, out []byte) {
	f.put(out, v)
}

func (f fixed[T]) Deserialize(v View) (T, error) {
	return f.get(v)
}

func Uint8() Adapter[uint8, Unit] {
	return fixed[uint8]{
		layout: Layout{Size: 1, Align: 1},
		put:    func(b []byte, v uint8) { b[0] = v },
		get:    View.Uint8,
	}
}

func Uint16() Adapter[uint16, Unit] {
	return fixed[uint16]{
		layout: Layout{Size: 2, Align: 2},
		put:    func(b []byte, v uint16) { le.PutUint16(b, v) },
		get:    View.Uint16,
	}
}

func Uint32() Adapter[uint32, Unit] {
	return fixed[uint32]{
		layout: Layout{Size: 4, Align: 4},
		put:    func(b []byte, v uint32) { le.PutUint32(b, v) },
		get:    View.Uint32,
	}
}

func Int32() Adapter[int32, Unit] {
	return fixed[int32]{
		layout: Layout{Size: 4, Align: 4},
		put:    func(b []byte, v int32) { le.PutUint32(b, uint32(v)) },
		get:    View.Int32,
	}
}

func Uint64() Adapter[uint64, Unit] {
	return fixed[uint64]{
		layout: Layout{Size: 8, Align: 8},
		put:    func(b []byte, v uint64) { le.PutUint64(b, v) },
		get:    View.Uint64,
	}
}

func Int64() Adapter[int64, Unit] {
	return fixed[int64]{
		layout: Layout{Size: 8, Align: 8},
		put:    func(b []byte, v int64) { le.PutUint64(b, uint64(v)) },
		get:    View.Int64,
	}
}

func Float32() Adapter[float32, Unit] {
	return fixed[float32]{
		layout: Layout{Size: 4, Align: 4},
		put:    func(b []byte, v float32) { le.PutUint32(b, math.Float32bits(v)) },
		get:    View.Float32,
	}
}

func Float64() Adapter[float64, Unit] {
	return fixed[float64]{
		layout: Layout{Size: 8, Align: 8},
		put:    func(b []byte, v float64) { le.PutUint64(b, math.Float64bits(v)) },
		get:    View.Float64,
	}
}

// I128 archives a raw Int128 with the same layout as Instant.
func I128() Adapter[Int128, Unit] {
	return fixed[Int128]{
		layout: instantLayout,
		put:    func(b []byte, v Int128) { v.put(b) },
		get:    View.Int128,
	}
}

// Bool archives a bool as one byte. Any byte other than 0 or 1 decodes as
// InvalidTag.
func Bool() Adapter[bool, Unit] {
	return fixed[bool]{
		layout: Layout{Size: 1, Align: 1},
		put: func(b []byte, v bool) {
			b[0] = 0
			if v {
				b[0] = 1
			}
		},
		get: func(v View) (bool, error) {
			tag, err := v.Uint8()
			if err != nil {
				return false, err
			}
			switch tag {
			case 0:
				return false, nil
			case 1:
				return true, nil
			default:
				return false, NewDecodeError(InvalidTag, v.pos, "bool tag %d", tag)
			}
		},
	}
}

// Enum archives a byte-sized enumeration. Values for which known returns false
// decode as InvalidTag.
func Enum[T ~uint8](known func(T) bool) Adapter[T, Unit] {
	return fixed[T]{
		layout: Layout{Size: 1, Align: 1},
		put:    func(b []byte, v T) { b[0] = uint8(v) },
		get: func(v View) (T, error) {
			tag, err := v.Uint8()
			if err != nil {
				return 0, err
			}
			if !known(T(tag)) {
				return 0, NewDecodeError(InvalidTag, v.pos, "enum value %d", tag)
			}
			return T(tag), nil
		},
	}
}
