package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys persisted by the session core.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyRoute = "route"
)

// Store is durable key/value persistence that survives process restarts.
// Get returns ok=false for a missing key; that is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v.
// A value that is present but fails to decode is reported as a decode error
// so callers can tell corruption apart from absence.
func GetJSON(ctx context.Context, st Store, key string, v any) (bool, error) {
	data, ok, err := st.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, &DecodeError{Key: key, Err: err}
	}
	return true, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, st Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return st.Set(ctx, key, data)
}

// DecodeError is returned by GetJSON when a stored value cannot be decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
