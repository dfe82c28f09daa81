// Package repository provides data access layer implementations for the application.
//
// Every repository keeps its collections as whole JSON documents in a
// store.Store. A repository-wide mutex makes each operation atomic within the
// process; concurrent writers in other processes can still overwrite each
// other (last write wins).
package repository

import (
	"context"
	"time"

	"carmarket/internal/models"
	"carmarket/internal/store"

	"github.com/google/uuid"
)

// clock and id generation are swappable in tests.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// collection is a typed view of one stored key.
type collection[T any] struct {
	store store.Store
	key   string
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	items, err := store.LoadCollection[T](ctx, c.store, c.key)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	if err := store.SaveCollection(ctx, c.store, c.key, items); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// indexOf returns the position of the first item matching match, or -1.
func indexOf[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
