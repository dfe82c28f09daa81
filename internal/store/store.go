// Package store persists whole JSON documents under well-known keys.
//
// Every mutation in the application is read-full, compute-new-full,
// write-full: a collection is loaded, changed in memory and written back in
// one Set. There are no partial writes and no versioning; the last write wins.
package store

import (
	"context"
	"errors"
	"fmt"

	"carmarket/internal/config"
	"carmarket/internal/observability"
)

// Keys of the persisted documents.
const (
	KeyCurrentUser       = "user"
	KeyUsers             = "users"
	KeyCars              = "cars"
	KeyChatRooms         = "chatRooms"
	KeyChatMessages      = "chatMessages"
	KeyCommunityPosts    = "communityPosts"
	KeyCommunityComments = "communityComments"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is a string-keyed document store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value unconditionally.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.StoreDriver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return Instrument(NewMemoryStore(), config.DriverMemory), nil
	case config.DriverRedis:
		addr := cfg.StoreDSN
		if addr == "" {
			addr = cfg.RedisURL
		}
		client, err := NewRedisClient(addr)
		if err != nil {
			return nil, err
		}
		return Instrument(NewRedisStore(client, cfg.StoreRedisPrefix), config.DriverRedis), nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := OpenDB(cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		s := NewSQLStore(db)
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return Instrument(s, cfg.StoreDriver), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Instrument wraps s so every operation is recorded in the store metrics.
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

type instrumented struct {
	next    Store
	backend string
}

func (i *instrumented) Get(ctx context.Context, key string) (b []byte, err error) {
	done := observability.TrackStoreOp(i.backend, "get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			done(nil)
			return
		}
		done(err)
	}()
	return i.next.Get(ctx, key)
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) (err error) {
	done := observability.TrackStoreOp(i.backend, "set")
	defer func() { done(err) }()
	return i.next.Set(ctx, key, value)
}

func (i *instrumented) Delete(ctx context.Context, key string) (err error) {
	done := observability.TrackStoreOp(i.backend, "delete")
	defer func() { done(err) }()
	return i.next.Delete(ctx, key)
}

func (i *instrumented) Ping(ctx context.Context) error { return i.next.Ping(ctx) }

func (i *instrumented) Close() error { return i.next.Close() }
