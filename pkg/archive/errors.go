package archive

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrInvalidTag reports a tag byte outside the set of known variants.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrOutOfRange reports a value that does not fit the target type's range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrCorruptLength reports an offset or length that points outside the buffer.
	ErrCorruptLength = errors.New("corrupt length")

	// ErrBufferFull is returned when an encode would grow the buffer past its limit.
	ErrBufferFull = errors.New("archive buffer full")
	// ErrScratchExhausted is returned when nested encodes hold more resolvers
	// than the serializer's scratch limit allows.
	ErrScratchExhausted = errors.New("scratch space exhausted")
)

// ErrorKind classifies decode failures.
type ErrorKind uint8

const (
	InvalidTag ErrorKind = iota + 1
	OutOfRange
	CorruptLength
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidTag:
		return "invalid_tag"
	case OutOfRange:
		return "out_of_range"
	case CorruptLength:
		return "corrupt_length"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// DecodeError is returned for archived data that cannot be read back.
// It unwraps to ErrInvalidTag, ErrOutOfRange or ErrCorruptLength.
type DecodeError struct {
	Kind   ErrorKind
	Pos    Pos
	Detail string
}

// NewDecodeError builds a DecodeError for the header at pos.
func NewDecodeError(kind ErrorKind, pos Pos, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("archive: %s at %d: %s", e.Kind, e.Pos, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case InvalidTag:
		return ErrInvalidTag
	case OutOfRange:
		return ErrOutOfRange
	case CorruptLength:
		return ErrCorruptLength
	default:
		return nil
	}
}

// KindOf reports the decode error kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
