package storage

import (
	"time"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/metrics"
)

// Options holds configuration for the archive store
type Options struct {
	Dir           string           // Directory for pebble data files
	Sync          bool             // Fsync every committed write
	KeepSnapshots int              // Snapshots kept per key (0 = keep all)
	Logger        *zap.Logger      // Defaults to a no-op logger
	Metrics       *metrics.Metrics // Optional
	FS            vfs.FS           // Filesystem override, vfs.NewMem() in tests
	Clock         func() time.Time // Defaults to time.Now
}

// VerifyReport summarizes a full walk over every stored snapshot
type VerifyReport struct {
	Keys      int               // Keys with at least one valid snapshot
	Snapshots int               // Snapshots that passed validation
	Bytes     int64             // Envelope bytes of valid snapshots
	Corrupt   []CorruptSnapshot // Snapshots that failed validation
}

// CorruptSnapshot identifies a snapshot that failed validation
type CorruptSnapshot struct {
	Key string
	ID  ksuid.KSUID
	Err error
}

// Errors
var (
	ErrNotFound   = &StoreError{"snapshot not found"}
	ErrClosed     = &StoreError{"store is closed"}
	ErrInvalidKey = &StoreError{"invalid key"}
	ErrCorruption = &StoreError{"data corruption detected"}
)

// StoreError represents an archive store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
