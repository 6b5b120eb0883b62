// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package redis provides an adapter that stores objects as JSON strings in
// Redis.
//
// Each object lives at "<prefix><kind>:<primary key>" and every kind keeps a
// set of its primary keys at "<prefix><kind>:index". A transaction queues
// writes in a MULTI/EXEC pipeline that is executed when the mapping pass
// ends and discarded when it fails. Queued writes are visible to reads made
// through the same Store before they are executed.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/logger"
)

// TagPrefix prefixes the tag of every Store.
const TagPrefix = "redis"

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// DefaultConnectAttempts is the number of pings Dial makes before giving up.
const DefaultConnectAttempts = 3

// Config holds Redis connection configuration.
type Config struct {
	// Addrs lists the server addresses. One address connects to a single
	// node, several to a cluster.
	Addrs []string

	Username string
	Password string
	DB       int

	// KeyPrefix namespaces every key, e.g. "jsonbind:".
	KeyPrefix string

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConnectAttempts bounds the initial pings (default 3).
	ConnectAttempts int
}

// Store is a Redis object store.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	tag       string
	logger    *slog.Logger

	// txMu is held for the duration of a transaction.
	txMu sync.Mutex

	mu       sync.Mutex
	pipe     redis.Pipeliner
	pending  map[string]*string
	identity map[string]any
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for transaction events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Dial connects to Redis and returns a Store using it.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("invalid redis configuration: at least one address is required")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = DefaultConnectAttempts
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	l := logger.Get()
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, client.Ping(ctx).Err()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(cfg.ConnectAttempts)), // #nosec G115 -- positive after defaulting
		backoff.WithNotify(func(err error, d time.Duration) {
			l.Warn("redis ping failed, retrying", "addrs", cfg.Addrs, "error", err, "retry_in", d)
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewStore(client, cfg.KeyPrefix, opts...), nil
}

// NewStore returns a Store using a pre-configured client.
func NewStore(client redis.UniversalClient, keyPrefix string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: keyPrefix,
		tag:       fmt.Sprintf("%s:%s", TagPrefix, uuid.NewString()),
		logger:    logger.Get(),
		identity:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Tag returns the transaction scope shared by the Store's adapters.
func (s *Store) Tag() string { return s.tag }

// InTransaction reports whether a transaction is open.
func (s *Store) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipe != nil
}

// Begin opens a transaction, waiting for any other transaction to finish.
func (s *Store) Begin(_ context.Context) error {
	s.txMu.Lock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipe = s.client.TxPipeline()
	s.pending = make(map[string]*string)
	s.logger.Debug("redis transaction started", "tag", s.tag)
	return nil
}

// Commit executes the queued writes.
func (s *Store) Commit(ctx context.Context) error {
	pipe := s.takePipe()
	if pipe == nil {
		return adapter.ErrNoTransaction
	}
	defer s.txMu.Unlock()

	if _, err := pipe.Exec(ctx); err != nil {
		s.forgetAll()
		return fmt.Errorf("executing transaction: %w", err)
	}
	s.logger.Debug("redis transaction committed", "tag", s.tag)
	return nil
}

// Rollback discards the queued writes. It does nothing when no transaction
// is open.
func (s *Store) Rollback(_ context.Context) {
	pipe := s.takePipe()
	if pipe == nil {
		return
	}
	defer s.txMu.Unlock()

	pipe.Discard()
	s.forgetAll()
	s.logger.Debug("redis transaction rolled back", "tag", s.tag)
}

func (s *Store) takePipe() redis.Pipeliner {
	s.mu.Lock()
	defer s.mu.Unlock()
	pipe := s.pipe
	s.pipe = nil
	s.pending = nil
	return pipe
}

func (s *Store) objectKey(kind, pk string) string {
	return s.keyPrefix + kind + ":" + pk
}

func (s *Store) indexKey(kind string) string {
	return s.keyPrefix + kind + ":index"
}

// write stores body at pk, or deletes pk when body is nil.
func (s *Store) write(ctx context.Context, kind, pk string, body *string) error {
	key := s.objectKey(kind, pk)

	s.mu.Lock()
	if s.pipe != nil {
		if body != nil {
			s.pipe.Set(ctx, key, *body, 0)
			s.pipe.SAdd(ctx, s.indexKey(kind), pk)
		} else {
			s.pipe.Del(ctx, key)
			s.pipe.SRem(ctx, s.indexKey(kind), pk)
		}
		s.pending[key] = body
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if body != nil {
			pipe.Set(ctx, key, *body, 0)
			pipe.SAdd(ctx, s.indexKey(kind), pk)
		} else {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, s.indexKey(kind), pk)
		}
		return nil
	})
	return err
}

// read returns the body stored at pk, seeing queued writes first.
func (s *Store) read(ctx context.Context, kind, pk string) (string, bool, error) {
	key := s.objectKey(kind, pk)

	s.mu.Lock()
	if body, ok := s.pending[key]; ok {
		s.mu.Unlock()
		if body == nil {
			return "", false, nil
		}
		return *body, true, nil
	}
	s.mu.Unlock()

	body, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return body, true, nil
}

// members returns the primary keys of kind, including queued writes.
func (s *Store) members(ctx context.Context, kind string) ([]string, error) {
	stored, err := s.client.SMembers(ctx, s.indexKey(kind)).Result()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(stored))
	var out []string
	for _, pk := range stored {
		if body, ok := s.pending[s.objectKey(kind, pk)]; ok && body == nil {
			continue
		}
		seen[pk] = true
		out = append(out, pk)
	}
	prefix := s.objectKey(kind, "")
	for key, body := range s.pending {
		pk, ok := strings.CutPrefix(key, prefix)
		if body == nil || !ok || seen[pk] {
			continue
		}
		seen[pk] = true
		out = append(out, pk)
	}
	return out, nil
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.identity[key]
	return obj, ok
}

func (s *Store) remember(key string, obj any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity[key] = obj
}

func (s *Store) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identity, key)
}

func (s *Store) forgetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = make(map[string]any)
}
