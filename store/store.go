package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a flat key-value store holding JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into T, returning def when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get %q: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, b); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
