package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"time"
)

// Magic identifies an osuvault envelope.
var Magic = [4]byte{'O', 'S', 'V', 'A'}

const (
	// HeaderSize is the fixed envelope header: magic, CRC, key size, archive
	// size and storage timestamp.
	HeaderSize = 24
	// ArchiveAlign is the alignment of the archive within the envelope.
	ArchiveAlign = 16
)

var (
	// ErrMalformed is returned for data that is not a well-formed envelope.
	ErrMalformed = errors.New("malformed envelope")
	// ErrChecksum is returned when an envelope's CRC does not match its contents.
	ErrChecksum = errors.New("envelope checksum mismatch")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Envelope is a decoded envelope. Key and Archive alias the buffer passed to
// Decode.
type Envelope struct {
	CRC32    uint32
	StoredAt time.Time
	Key      []byte
	Archive  []byte

	raw []byte
}

// EnvelopeCodec wraps archives with the key they are stored under and a checksum
type EnvelopeCodec struct{}

// NewEnvelopeCodec creates a new envelope codec instance
func NewEnvelopeCodec() *EnvelopeCodec {
	return &EnvelopeCodec{}
}

func archiveOffset(keySize int) int {
	return (HeaderSize + keySize + ArchiveAlign - 1) &^ (ArchiveAlign - 1)
}

// checkSizes rejects sizes that do not fit the 32-bit header fields.
func checkSizes(keySize, archiveSize int) error {
	if uint64(keySize) > math.MaxUint32 || uint64(archiveSize) > math.MaxUint32 {
		return fmt.Errorf("%w: key of %d bytes with archive of %d bytes is too large", ErrMalformed, keySize, archiveSize)
	}
	return nil
}

// Encode wraps an archive buffer.
// Format: [Magic(4)][CRC32C(4)][KeySize(4)][ArchiveSize(4)][StoredAt(8)][Key][pad][Archive]
func (c *EnvelopeCodec) Encode(key, archive []byte, storedAt time.Time) ([]byte, error) {
	if err := checkSizes(len(key), len(archive)); err != nil {
		return nil, err
	}

	off := archiveOffset(len(key))
	buf := make([]byte, off+len(archive))

	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(archive)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(storedAt.UnixNano()))
	copy(buf[HeaderSize:], key)
	copy(buf[off:], archive)

	binary.LittleEndian.PutUint32(buf[4:], crc32.Checksum(buf[8:], castagnoli))
	return buf, nil
}

// Decode parses an envelope without copying or validating its checksum.
func (c *EnvelopeCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}
	if !bytes.Equal(data[0:4], Magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformed, data[0:4])
	}

	keySize := uint64(binary.LittleEndian.Uint32(data[8:12]))
	archiveSize := uint64(binary.LittleEndian.Uint32(data[12:16]))
	off := uint64(archiveOffset(int(keySize)))
	if off+archiveSize != uint64(len(data)) {
		return nil, fmt.Errorf("%w: sizes declare %d bytes, have %d", ErrMalformed, off+archiveSize, len(data))
	}

	end := off + archiveSize
	return &Envelope{
		CRC32:    binary.LittleEndian.Uint32(data[4:8]),
		StoredAt: time.Unix(0, int64(binary.LittleEndian.Uint64(data[16:24]))).UTC(),
		Key:      data[HeaderSize : HeaderSize+keySize : HeaderSize+keySize],
		Archive:  data[off:end:end],
		raw:      data,
	}, nil
}

// Validate checks the envelope's CRC against its contents.
func (e *Envelope) Validate() error {
	if len(e.raw) < HeaderSize {
		return fmt.Errorf("%w: envelope was not decoded", ErrMalformed)
	}
	if sum := crc32.Checksum(e.raw[8:], castagnoli); sum != e.CRC32 {
		return fmt.Errorf("%w: %08x != %08x", ErrChecksum, e.CRC32, sum)
	}
	return nil
}

// Size returns the encoded size of the envelope.
func (e *Envelope) Size() int {
	return archiveOffset(len(e.Key)) + len(e.Archive)
}
