package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"carmarket/internal/models"
	"carmarket/internal/observability"
)

// LoadCollection reads the JSON array stored under key. A missing key is an
// empty collection. A value that does not decode is reset to an empty
// collection, and the reset is written back before returning.
func LoadCollection[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		observability.StoreCorruptions.WithLabelValues(key).Inc()
		observability.Logger.WarnContext(ctx, "stored collection is corrupted, resetting to empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		if err := SaveCollection(ctx, s, key, []T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveCollection replaces the whole collection stored under key.
func SaveCollection[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadRecord reads a single JSON object. It returns nil when the key is
// absent, and an error wrapping models.ErrStorageCorruption when the value
// does not decode.
func LoadRecord[T any](ctx context.Context, s Store, key string) (*T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		observability.StoreCorruptions.WithLabelValues(key).Inc()
		return nil, fmt.Errorf("decode %s: %w: %v", key, models.ErrStorageCorruption, err)
	}
	return &rec, nil
}

// SaveRecord overwrites the single JSON object stored under key.
func SaveRecord[T any](ctx context.Context, s Store, key string, rec T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
