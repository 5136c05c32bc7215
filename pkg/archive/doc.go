// Package archive implements a relocatable, read-in-place binary archive format
// for plain Go values.
//
// An archive is a single byte buffer. Every archived value lives at a byte
// position inside it, and every cross reference is stored as a signed 32-bit
// offset relative to the field holding it. A buffer can therefore be copied,
// memory-mapped or embedded at any base offset and still be read back without a
// deserialization pass: readers index into the buffer and interpret the bytes
// where they are.
//
// # Adapters
//
// Values are archived by adapters. An Adapter[O, R] archives source values of
// type O and uses a resolver of type R to carry state between its two encode
// phases:
//
//	Serialize(s, v) (R, error)      // write variable-length payloads, recurse into children
//	Resolve(v, pos, r, out)         // write the fixed-size header for v at pos
//	Deserialize(view) (O, error)    // rebuild an owned O from its archived header
//
// Children are always serialized before the parent header is resolved. That
// makes every relative offset a subtraction of two known positions.
//
// Adapters compose. Sequence and Optional are parameterized by an element
// adapter, so an optional list of usernames is simply:
//
//	archive.Optional(archive.Sequence(model.UsernameArchiver()))
//
// # Layouts
//
// Each adapter has a fixed header Layout (size and alignment) that does not
// depend on the value being archived. All integers are little-endian.
//
//	Sequence     {rel int32, len uint32} + len contiguous element headers at pos+rel
//	String       {rel int32, len uint32} + raw UTF-8 bytes at pos+rel
//	Optional[T]  u8 tag (0 absent, 1 present) + T header at alignUp(1, T.Align)
//	Instant      16 bytes, two's complement i128 nanoseconds since the Unix epoch
//	Record       C-like struct of field headers in declaration order
//
// The root header of an archive is always the last Layout().Size bytes of the
// buffer.
//
// # Usage
//
//	buf, err := archive.Encode(archive.Sequence(archive.String()), []string{"a", "b"})
//	if err != nil {
//	    return err
//	}
//
//	names, err := archive.Decode(archive.Sequence(archive.String()), buf)
//
// # Errors
//
// Encoding fails with ErrBufferFull, ErrScratchExhausted or a wrapped
// ErrOutOfRange for values that have no archived form. Decoding a corrupt
// buffer returns a *DecodeError whose Kind is InvalidTag, OutOfRange or
// CorruptLength. Decoding never panics on bad input.
//
// # Thread Safety
//
// Adapters are immutable values and safe for concurrent use. A Serializer
// belongs to a single encode call. Finished buffers are never mutated and may
// be read from any number of goroutines.
package archive
