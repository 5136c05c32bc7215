// Package vault stores typed values as archive snapshots.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/archive"
	"github.com/ssargent/osuvault/pkg/codec"
	"github.com/ssargent/osuvault/pkg/logging"
	"github.com/ssargent/osuvault/pkg/metrics"
)

// Store is the snapshot storage a vault writes through. *storage.ArchiveStore
// implements it.
type Store interface {
	Put(ctx context.Context, key string, archive []byte) (ksuid.KSUID, error)
	Latest(ctx context.Context, key string) (*codec.Envelope, error)
	Snapshot(ctx context.Context, key string, id ksuid.KSUID) (*codec.Envelope, error)
	History(ctx context.Context, key string) ([]ksuid.KSUID, error)
}

// Vault encodes values of type O with an adapter and keeps them in a Store.
type Vault[O, R any] struct {
	store   Store
	adapter archive.Adapter[O, R]

	archiveOpts []archive.Option
	logger      *zap.Logger
	metrics     *metrics.Metrics
	clock       func() time.Time
}

// Option configures a Vault.
type Option func(*settings)

type settings struct {
	archiveOpts []archive.Option
	logger      *zap.Logger
	metrics     *metrics.Metrics
	clock       func() time.Time
}

// WithArchiveOptions sets the serializer options used by Save.
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(s *settings) {
		s.archiveOpts = append(s.archiveOpts, opts...)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithMetrics records encode and decode outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithClock sets the clock used to age loaded snapshots.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// New builds a vault over store.
func New[O, R any](store Store, adapter archive.Adapter[O, R], opts ...Option) *Vault[O, R] {
	s := settings{clock: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Vault[O, R]{
		store:       store,
		adapter:     adapter,
		archiveOpts: s.archiveOpts,
		logger:      logging.OrNop(s.logger).Named("vault"),
		metrics:     s.metrics,
		clock:       s.clock,
	}
}

// Save encodes v and stores it as the newest snapshot of key.
func (v *Vault[O, R]) Save(ctx context.Context, key string, value O) (ksuid.KSUID, error) {
	if err := ctx.Err(); err != nil {
		return ksuid.Nil, err
	}

	buf, err := archive.Encode(v.adapter, value, v.archiveOpts...)
	v.metrics.RecordEncode(err, len(buf))
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}

	id, err := v.store.Put(ctx, key, buf)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	v.logger.Debug("saved", zap.String("key", key), zap.Stringer("id", id), zap.Int("bytes", len(buf)))
	return id, nil
}

// Load decodes the newest snapshot of key.
func (v *Vault[O, R]) Load(ctx context.Context, key string) (O, error) {
	env, err := v.store.Latest(ctx, key)
	if err != nil {
		var zero O
		return zero, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return v.decode(key, env)
}

// LoadSnapshot decodes the snapshot of key named id.
func (v *Vault[O, R]) LoadSnapshot(ctx context.Context, key string, id ksuid.KSUID) (O, error) {
	env, err := v.store.Snapshot(ctx, key, id)
	if err != nil {
		var zero O
		return zero, fmt.Errorf("failed to load %s@%s: %w", key, id, err)
	}
	return v.decode(key, env)
}

// History lists the snapshot ids of key, oldest first.
func (v *Vault[O, R]) History(ctx context.Context, key string) ([]ksuid.KSUID, error) {
	return v.store.History(ctx, key)
}

// Check decodes the newest snapshot of key and discards the value.
func (v *Vault[O, R]) Check(ctx context.Context, key string) error {
	_, err := v.Load(ctx, key)
	return err
}

// CheckArchive decodes a raw archive and discards the value.
func (v *Vault[O, R]) CheckArchive(buf []byte) error {
	_, err := archive.Decode(v.adapter, buf)
	v.metrics.RecordDecode(err)
	return err
}

func (v *Vault[O, R]) decode(key string, env *codec.Envelope) (O, error) {
	value, err := archive.Decode(v.adapter, env.Archive)
	v.metrics.RecordDecode(err)
	if err != nil {
		v.logger.Warn("undecodable snapshot", zap.String("key", key), zap.Error(err))
		var zero O
		return zero, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	v.logger.Debug("loaded",
		zap.String("key", key),
		zap.Int("bytes", len(env.Archive)),
		zap.Duration("age", v.clock().Sub(env.StoredAt)),
	)
	return value, nil
}
