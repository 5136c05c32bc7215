// Package codec provides the envelope that osuvault wraps every stored
// archive in.
//
// An archive buffer is self-describing only once you know which adapter wrote
// it. The envelope adds what the storage layer needs on top: the key the
// archive was stored under, when it was stored, and a checksum that covers
// all of it.
//
// # Envelope Format
//
//	[Magic(4)][CRC32C(4)][KeySize(4)][ArchiveSize(4)][StoredAt(8)][Key][pad][Archive]
//
// Fields:
//   - Magic: the four bytes "OSVA"
//   - CRC32C: Castagnoli CRC over every byte after the CRC field (little-endian)
//   - KeySize: 32-bit unsigned key length in bytes (little-endian)
//   - ArchiveSize: 32-bit unsigned archive length in bytes (little-endian)
//   - StoredAt: 64-bit Unix timestamp in nanoseconds (little-endian)
//   - Key: variable-length key data
//   - pad: zero bytes up to the next multiple of 16
//   - Archive: the archive buffer, unchanged
//
// The archive starts at a 16-byte aligned offset from the start of the
// envelope so the widest archived header keeps its alignment when the
// envelope is read into an aligned buffer.
//
// # Usage
//
//	c := codec.NewEnvelopeCodec()
//
//	data, err := c.Encode([]byte("user:2"), buf, time.Now())
//	if err != nil {
//	    return err
//	}
//
//	env, err := c.Decode(data)
//	if err != nil {
//	    return err
//	}
//	if err := env.Validate(); err != nil {
//	    return err // corrupted on disk
//	}
//
// # Error Handling
//
// Decode returns ErrMalformed for short data, a wrong magic or sizes that do
// not add up. Validate returns ErrChecksum when the CRC does not match.
//
// # Thread Safety
//
// EnvelopeCodec instances are safe for concurrent use. A decoded Envelope
// aliases its input and is safe to share as long as the input is not modified.
package codec
