package archive

import (
	"fmt"
	"math"
	"slices"
)

// DefaultMaxSize is the largest buffer a Serializer will produce. Relative
// offsets are 32-bit, so no archive may exceed it.
const DefaultMaxSize = math.MaxInt32

// Option configures a Serializer.
type Option func(*Serializer)

// WithCapacity preallocates n bytes of output buffer.
func WithCapacity(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.buf = make([]byte, 0, n)
		}
	}
}

// WithMaxSize caps the output buffer at n bytes. Values above DefaultMaxSize
// are clamped.
func WithMaxSize(n int) Option {
	return func(s *Serializer) {
		s.maxSize = n
	}
}

// WithScratchLimit caps the number of resolvers that may be held at once while
// serializing nested sequences and records. Zero means no limit.
func WithScratchLimit(n int) Option {
	return func(s *Serializer) {
		s.scratchLimit = n
	}
}

// Serializer is the write side of an archive. It appends to a single buffer and
// keeps track of the resolver scratch held by in-progress adapters.
// A Serializer is not safe for concurrent use.
type Serializer struct {
	buf          []byte
	maxSize      int
	scratchLimit int
	scratchInUse int
}

// NewSerializer creates a serializer with an empty output buffer.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxSize <= 0 || s.maxSize > DefaultMaxSize {
		s.maxSize = DefaultMaxSize
	}
	if s.buf == nil {
		s.buf = make([]byte, 0, 256)
	}
	return s
}

// Pos returns the position the next write will start at.
func (s *Serializer) Pos() Pos {
	return Pos(len(s.buf))
}

// Bytes returns the archive written so far. The slice aliases the serializer's
// buffer until Reset is called.
func (s *Serializer) Bytes() []byte {
	return s.buf
}

// Reset discards all written data so the serializer can be reused.
func (s *Serializer) Reset() {
	s.buf = s.buf[:0]
	s.scratchInUse = 0
}

// grow appends n zero bytes and returns where they start.
func (s *Serializer) grow(n int) (Pos, error) {
	pos := len(s.buf)
	if n < 0 || n > s.maxSize-pos {
		return 0, fmt.Errorf("%w: need %d bytes at %d, limit %d", ErrBufferFull, n, pos, s.maxSize)
	}
	s.buf = slices.Grow(s.buf, n)[:pos+n]
	clear(s.buf[pos:])
	return Pos(pos), nil
}

// Align pads the buffer with zero bytes up to the next multiple of align.
func (s *Serializer) Align(align int) (Pos, error) {
	pad := alignUp(len(s.buf), align) - len(s.buf)
	if pad > 0 {
		if _, err := s.grow(pad); err != nil {
			return 0, err
		}
	}
	return s.Pos(), nil
}

// Write appends raw bytes and returns their position.
func (s *Serializer) Write(p []byte) (Pos, error) {
	pos, err := s.grow(len(p))
	if err != nil {
		return 0, err
	}
	copy(s.buf[pos:], p)
	return pos, nil
}

// WriteString appends the bytes of str and returns their position.
func (s *Serializer) WriteString(str string) (Pos, error) {
	pos, err := s.grow(len(str))
	if err != nil {
		return 0, err
	}
	copy(s.buf[pos:], str)
	return pos, nil
}

// Reserve appends a zeroed, aligned header of layout l to be filled in by a
// Resolve call.
func (s *Serializer) Reserve(l Layout) (Pos, error) {
	return s.ReserveArray(l, 1)
}

// ReserveArray appends n zeroed, aligned headers of layout l laid out
// contiguously with l.Stride() bytes between them.
func (s *Serializer) ReserveArray(l Layout, n int) (Pos, error) {
	stride := l.Stride()
	if n < 0 || (stride > 0 && n > s.maxSize/stride) {
		return 0, fmt.Errorf("%w: %d headers of %d bytes", ErrBufferFull, n, stride)
	}
	pos, err := s.Align(l.alignment())
	if err != nil {
		return 0, err
	}
	if _, err := s.grow(n * stride); err != nil {
		return 0, err
	}
	return pos, nil
}

// Header returns the writable bytes of a header previously reserved at pos.
// The slice is only valid until the next write.
func (s *Serializer) Header(pos Pos, l Layout) []byte {
	end := int(pos) + l.Size
	return s.buf[pos:end:end]
}

func (s *Serializer) acquireScratch(n int) error {
	if s.scratchLimit > 0 && n > s.scratchLimit-s.scratchInUse {
		return fmt.Errorf("%w: need %d resolvers, %d of %d in use", ErrScratchExhausted, n, s.scratchInUse, s.scratchLimit)
	}
	s.scratchInUse += n
	return nil
}

func (s *Serializer) releaseScratch(n int) {
	s.scratchInUse -= n
}
