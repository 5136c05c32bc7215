package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/codec"
	"github.com/ssargent/osuvault/pkg/logging"
	"github.com/ssargent/osuvault/pkg/metrics"
)

// ArchiveStore keeps a history of archive snapshots per key in pebble. Every
// snapshot is wrapped in a checksummed envelope and named by a ksuid, so a
// key's snapshots sort oldest first.
type ArchiveStore struct {
	db        *pebble.DB
	codec     *codec.EnvelopeCodec
	writeOpts *pebble.WriteOptions
	keep      int
	clock     func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mutex  sync.RWMutex
	closed bool
}

// pebbleLogger routes pebble's informational output to debug level.
type pebbleLogger struct {
	s *zap.SugaredLogger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.s.Debugf(format, args...)
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.s.Errorf(format, args...)
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.s.Fatalf(format, args...)
}

// Open opens or creates the store in opts.Dir
func Open(opts Options) (*ArchiveStore, error) {
	if opts.KeepSnapshots < 0 {
		return nil, fmt.Errorf("keep snapshots must not be negative, got %d", opts.KeepSnapshots)
	}
	logger := logging.OrNop(opts.Logger).Named("storage")

	db, err := pebble.Open(opts.Dir, &pebble.Options{
		FS:     opts.FS,
		Logger: pebbleLogger{s: logger.Named("pebble").Sugar()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", opts.Dir, err)
	}

	writeOpts := pebble.NoSync
	if opts.Sync {
		writeOpts = pebble.Sync
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	logger.Debug("opened archive store", zap.String("dir", opts.Dir), zap.Bool("sync", opts.Sync), zap.Int("keep", opts.KeepSnapshots))
	return &ArchiveStore{
		db:        db,
		codec:     codec.NewEnvelopeCodec(),
		writeOpts: writeOpts,
		keep:      opts.KeepSnapshots,
		clock:     clock,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

func (s *ArchiveStore) observe(operation string, start time.Time, err error) {
	s.metrics.RecordStoreOperation(operation, err, time.Since(start))
}

// begin checks the context and the store state before an operation. The
// returned function releases the read lock.
func (s *ArchiveStore) begin(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	if s.closed {
		s.mutex.RUnlock()
		return nil, ErrClosed
	}
	return s.mutex.RUnlock, nil
}

// Put stores archive as the newest snapshot of key and returns its id.
// Snapshots beyond the retention limit are pruned oldest first in the same
// batch.
func (s *ArchiveStore) Put(ctx context.Context, key string, archive []byte) (id ksuid.KSUID, err error) {
	start := time.Now()
	defer func() { s.observe("put", start, err) }()

	if err := validateKey(key); err != nil {
		return ksuid.Nil, err
	}
	if err := ctx.Err(); err != nil {
		return ksuid.Nil, err
	}

	// writers are serialized so ids per key stay strictly increasing
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ksuid.Nil, ErrClosed
	}

	now := s.clock()
	id, err = ksuid.NewRandomWithTime(now)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to generate snapshot id: %w", err)
	}
	prev, err := s.latestID(key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return ksuid.Nil, err
	case ksuid.Compare(id, prev) <= 0:
		id = prev.Next()
	}

	envelope, err := s.codec.Encode([]byte(key), archive, now)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to wrap archive: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(snapshotKey(key, id), envelope, nil); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to stage snapshot: %w", err)
	}
	if err := batch.Set(latestKey(key), id.Bytes(), nil); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to stage latest pointer: %w", err)
	}

	pruned := 0
	if s.keep > 0 {
		ids, err := s.history(key)
		if err != nil {
			return ksuid.Nil, err
		}
		// ids does not include the snapshot being written
		for excess := len(ids) + 1 - s.keep; pruned < excess; pruned++ {
			if err := batch.Delete(snapshotKey(key, ids[pruned]), nil); err != nil {
				return ksuid.Nil, fmt.Errorf("failed to stage prune: %w", err)
			}
		}
	}

	if err := batch.Commit(s.writeOpts); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug("stored snapshot",
		zap.String("key", key),
		zap.Stringer("id", id),
		zap.Int("bytes", len(envelope)),
		zap.Int("pruned", pruned),
	)
	return id, nil
}

func (s *ArchiveStore) latestID(key string) (ksuid.KSUID, error) {
	value, closer, err := s.db.Get(latestKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return ksuid.Nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to read latest pointer: %w", err)
	}
	defer closer.Close()

	id, err := ksuid.FromBytes(value)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: latest pointer of %s: %v", ErrCorruption, key, err)
	}
	return id, nil
}

// Latest returns the newest snapshot of key.
func (s *ArchiveStore) Latest(ctx context.Context, key string) (env *codec.Envelope, err error) {
	start := time.Now()
	defer func() { s.observe("latest", start, err) }()

	if err := validateKey(key); err != nil {
		return nil, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := s.latestID(key)
	if err != nil {
		return nil, err
	}
	return s.snapshot(key, id)
}

// Snapshot returns the snapshot of key named id.
func (s *ArchiveStore) Snapshot(ctx context.Context, key string, id ksuid.KSUID) (env *codec.Envelope, err error) {
	start := time.Now()
	defer func() { s.observe("snapshot", start, err) }()

	if err := validateKey(key); err != nil {
		return nil, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.snapshot(key, id)
}

func (s *ArchiveStore) snapshot(key string, id ksuid.KSUID) (*codec.Envelope, error) {
	value, closer, err := s.db.Get(snapshotKey(key, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, key, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	// pebble owns value until the closer is closed
	data := bytes.Clone(value)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("failed to release snapshot: %w", err)
	}

	env, err := s.open(key, data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s@%s: %w", key, id, err)
	}
	return env, nil
}

// open decodes and validates an envelope stored under key.
func (s *ArchiveStore) open(key string, data []byte) (*codec.Envelope, error) {
	env, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruption, err)
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruption, err)
	}
	if string(env.Key) != key {
		return nil, fmt.Errorf("%w: envelope key %q stored under %q", ErrCorruption, env.Key, key)
	}
	return env, nil
}

// History lists the snapshot ids of key, oldest first. A key with no
// snapshots has an empty history.
func (s *ArchiveStore) History(ctx context.Context, key string) (ids []ksuid.KSUID, err error) {
	start := time.Now()
	defer func() { s.observe("history", start, err) }()

	if err := validateKey(key); err != nil {
		return nil, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.history(key)
}

func (s *ArchiveStore) history(key string) (ids []ksuid.KSUID, err error) {
	prefix := snapshotKeyPrefix(key)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close iterator: %w", cerr)
		}
	}()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: snapshot key %q: %v", ErrCorruption, iter.Key(), err)
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return ids, nil
}

// Keys lists every key that has a latest snapshot, in byte order.
func (s *ArchiveStore) Keys(ctx context.Context) (keys []string, err error) {
	start := time.Now()
	defer func() { s.observe("keys", start, err) }()

	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	prefix := []byte(latestPrefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close iterator: %w", cerr)
		}
	}()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keys = append(keys, string(iter.Key()[len(prefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Delete removes every snapshot of key.
func (s *ArchiveStore) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete", start, err) }()

	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.latestID(key); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	prefix := snapshotKeyPrefix(key)
	if err := batch.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
		return fmt.Errorf("failed to stage snapshot deletion: %w", err)
	}
	if err := batch.Delete(latestKey(key), nil); err != nil {
		return fmt.Errorf("failed to stage latest pointer deletion: %w", err)
	}
	if err := batch.Commit(s.writeOpts); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	s.logger.Debug("deleted key", zap.String("key", key))
	return nil
}

// Verify walks every snapshot in the store and validates its envelope. fn,
// if non-nil, is called for each valid snapshot; an error from fn stops the
// walk and is returned. Corrupt snapshots are collected in the report rather
// than returned as errors.
func (s *ArchiveStore) Verify(ctx context.Context, fn func(key string, id ksuid.KSUID, env *codec.Envelope) error) (report *VerifyReport, err error) {
	start := time.Now()
	defer func() { s.observe("verify", start, err) }()

	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	prefix := []byte(snapshotPrefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close iterator: %w", cerr)
		}
	}()

	report = &VerifyReport{}
	seen := make(map[string]struct{})
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, id, err := parseSnapshotKey(iter.Key())
		if err != nil {
			report.Corrupt = append(report.Corrupt, CorruptSnapshot{Key: string(iter.Key()), Err: err})
			continue
		}

		data := bytes.Clone(iter.Value())
		env, err := s.open(key, data)
		if err != nil {
			s.logger.Warn("corrupt snapshot", zap.String("key", key), zap.Stringer("id", id), zap.Error(err))
			report.Corrupt = append(report.Corrupt, CorruptSnapshot{Key: key, ID: id, Err: err})
			continue
		}

		report.Snapshots++
		report.Bytes += int64(len(data))
		seen[key] = struct{}{}

		if fn != nil {
			if err := fn(key, id, env); err != nil {
				return nil, err
			}
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to walk snapshots: %w", err)
	}

	report.Keys = len(seen)
	s.metrics.UpdateStoreStats(report.Snapshots, report.Bytes)
	s.logger.Info("verified store",
		zap.Int("keys", report.Keys),
		zap.Int("snapshots", report.Snapshots),
		zap.Int("corrupt", len(report.Corrupt)),
	)
	return report, nil
}

// Close closes the store. Further operations return ErrClosed.
func (s *ArchiveStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}
