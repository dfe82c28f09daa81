package store

import (
	"context"
	"testing"

	"carmarket/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := OpenDB(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	s := NewSQLStore(db)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr())
	require.NoError(t, err)
	s := NewRedisStore(client, "test:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStoreBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newMiniredisStore(t)
			return s
		},
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
		"instrumented": func(t *testing.T) Store {
			return Instrument(NewMemoryStore(), "memory")
		},
	}

	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			require.NoError(t, s.Ping(ctx))

			_, err := s.Get(ctx, KeyCars)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyCars, []byte(`[{"id":"1"}]`)))
			got, err := s.Get(ctx, KeyCars)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1"}]`, string(got))

			require.NoError(t, s.Set(ctx, KeyCars, []byte(`[]`)))
			got, err = s.Get(ctx, KeyCars)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, s.Delete(ctx, KeyCars))
			_, err = s.Get(ctx, KeyCars)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Delete(ctx, "never-written"))
		})
	}
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	s, mr := newMiniredisStore(t)

	require.NoError(t, s.Set(context.Background(), KeyUsers, []byte(`[]`)))

	v, err := mr.Get("test:users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
	assert.False(t, mr.Exists("users"))
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("redis://:bad:url:")
	assert.Error(t, err)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(&config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	mr := miniredis.RunT(t)
	s, err = Open(&config.Config{StoreDriver: config.DriverRedis, RedisURL: mr.Addr(), StoreRedisPrefix: "p:"})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), KeyCars, []byte(`[]`)))
	assert.True(t, mr.Exists("p:cars"))
	_ = s.Close()

	s, err = Open(&config.Config{StoreDriver: config.DriverSQLite, StoreDSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), KeyCars, []byte(`[]`)))
	_ = s.Close()

	_, err = Open(&config.Config{StoreDriver: "mongo"})
	assert.Error(t, err)
}
