package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "harmony.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	return map[string]KV{
		"sqlite": openTestSQLite(t),
		"memory": NewMemory(),
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, KeyClients)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, KeyClients, []byte(`[1]`)))
			require.NoError(t, kv.Set(ctx, KeyClients, []byte(`[1,2]`)))

			got, ok, err := kv.Get(ctx, KeyClients)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, kv.Delete(ctx, KeyClients, "missing"))
			_, ok, err = kv.Get(ctx, KeyClients)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := []record{{ID: 2, Name: "Ana"}, {ID: 1, Name: "Luis"}}
			require.NoError(t, SetJSON(ctx, kv, KeyHistory, want))

			got, ok, err := GetJSON[[]record](ctx, kv, KeyHistory)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want, got)

			require.NoError(t, SetJSONMany(ctx, kv, map[string]any{
				KeyClients: []record{},
				KeyHistory: []record{{ID: 3}},
			}))
			hist, _, err := GetJSON[[]record](ctx, kv, KeyHistory)
			require.NoError(t, err)
			assert.Equal(t, []record{{ID: 3}}, hist)
		})
	}
}

func TestGetJSONCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyClients, []byte("{not json")))

	_, ok, err := GetJSON[[]record](ctx, kv, KeyClients)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "harmony.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeySession, []byte(`"admin"`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, ok, err := s.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"admin"`, string(got))

	_, ok, err = s.UpdatedAt(ctx, KeySession)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLastWrite(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, ok, err := LastWrite(ctx, s, KeyClients)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, KeyClients, []record{{ID: 1, Name: "Ana"}}))
	at, ok, err := LastWrite(ctx, s, KeyClients)
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), at, time.Minute)

	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, KeyClients, []byte(`[]`)))
	_, ok, err = LastWrite(ctx, mem, KeyClients)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBusinessExpensesKey(t *testing.T) {
	assert.Equal(t, "harmony_business_expenses_admin", BusinessExpensesKey(" Admin "))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{Backend: BackendRedis})
	assert.Error(t, err)
}
