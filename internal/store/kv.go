// Package store provides the key-value backends that hold harmony's
// collections, session and ledgers.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Storage keys. Each collection is stored whole as one JSON array.
const (
	KeyClients   = "harmony_glass_clients_v4"
	KeyHistory   = "harmony_glass_history_v4"
	KeySession   = "harmony_glass_session"
	KeyUsername  = "harmony_glass_username"
	KeyBiometric = "harmony_biometric"

	businessExpensesPrefix = "harmony_business_expenses_"
)

// BusinessExpensesKey is the per-user ledger key.
func BusinessExpensesKey(user string) string {
	return businessExpensesPrefix + strings.ToLower(strings.TrimSpace(user))
}

// KV is a string-keyed byte store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Batcher is implemented by backends that can write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Stamper is implemented by backends that record when each key was written.
type Stamper interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// LastWrite reports when key was last written. Backends without timestamps
// report ok=false.
func LastWrite(ctx context.Context, kv KV, key string) (time.Time, bool, error) {
	st, ok := kv.(Stamper)
	if !ok {
		return time.Time{}, false, nil
	}
	return st.UpdatedAt(ctx, key)
}

// GetJSON decodes the value at key into a T.
func GetJSON[T any](ctx context.Context, kv KV, key string) (T, bool, error) {
	var out T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

// SetJSONMany encodes and stores several values, atomically when the
// backend supports it.
func SetJSONMany(ctx context.Context, kv KV, values map[string]any) error {
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		encoded[key] = raw
	}
	if b, ok := kv.(Batcher); ok {
		return b.SetMany(ctx, encoded)
	}
	for key, raw := range encoded {
		if err := kv.Set(ctx, key, raw); err != nil {
			return err
		}
	}
	return nil
}
