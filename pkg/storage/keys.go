package storage

import (
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"
)

// Key layout:
//
//	s/<key>/<ksuid bytes>  envelope of one snapshot
//	l/<key>                ksuid bytes of the latest snapshot
//
// Keys may not contain '/', so every prefix below matches exactly one key.
const (
	snapshotPrefix = "s/"
	latestPrefix   = "l/"
	separator      = '/'

	idLength = 20
)

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.IndexByte(key, separator) >= 0 {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, separator)
	}
	return nil
}

func latestKey(key string) []byte {
	return []byte(latestPrefix + key)
}

func snapshotKeyPrefix(key string) []byte {
	return []byte(snapshotPrefix + key + string(separator))
}

func snapshotKey(key string, id ksuid.KSUID) []byte {
	return append(snapshotKeyPrefix(key), id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix p.
func prefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// parseSnapshotKey splits s/<key>/<id>.
func parseSnapshotKey(k []byte) (string, ksuid.KSUID, error) {
	rest, ok := strings.CutPrefix(string(k), snapshotPrefix)
	if !ok || len(rest) < idLength+2 {
		return "", ksuid.Nil, fmt.Errorf("%w: malformed snapshot key %q", ErrCorruption, k)
	}
	split := len(rest) - idLength - 1
	if rest[split] != separator {
		return "", ksuid.Nil, fmt.Errorf("%w: malformed snapshot key %q", ErrCorruption, k)
	}
	id, err := ksuid.FromBytes([]byte(rest[split+1:]))
	if err != nil {
		return "", ksuid.Nil, fmt.Errorf("%w: snapshot id in %q: %v", ErrCorruption, k, err)
	}
	return rest[:split], id, nil
}
