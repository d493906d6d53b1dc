package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyBaseURL = "remote.base_url"
	keyLimit   = "import.limit_per_file"
	keyEnabled = "import.enabled"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()

	assert.Empty(t, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
	assert.Zero(t, store.Saves())
}

func TestNewConfigStore_Seed(t *testing.T) {
	store := NewConfigStore(
		map[string]any{keyBaseURL: "https://example.com/export/", keyLimit: 10},
		map[string]any{keyLimit: 25},
	)

	assert.Equal(t, "https://example.com/export/", store.GetString(keyBaseURL))
	assert.Equal(t, 25, store.GetInt(keyLimit), "later seeds win")
	assert.Zero(t, store.Saves())

	require.NoError(t, store.Load())
	assert.Equal(t, 25, store.GetInt(keyLimit), "seed values are persisted")
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set(keyEnabled, true))
	require.NoError(t, store.Set(keyLimit, 100))

	val, ok := store.Get(keyEnabled)
	assert.True(t, ok)
	assert.Equal(t, true, val)
	assert.Equal(t, []string{keyEnabled, keyLimit}, store.Keys())
	assert.Equal(t, 2, store.Saves())

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"string":      "value",
		"int":         42,
		"int64":       int64(43),
		"whole_float": float64(44),
		"frac_float":  2.5,
		"bool":        true,
	})

	tests := []struct {
		key    string
		str    string
		num    int
		flt    float64
		truthy bool
	}{
		{key: "string", str: "value"},
		{key: "int", num: 42, flt: 42},
		{key: "int64", num: 43, flt: 43},
		{key: "whole_float", num: 44, flt: 44},
		{key: "frac_float", flt: 2.5},
		{key: "bool", truthy: true},
		{key: "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.str, store.GetString(tt.key))
			assert.Equal(t, tt.num, store.GetInt(tt.key))
			assert.InDelta(t, tt.flt, store.GetFloat(tt.key), 1e-9)
			assert.Equal(t, tt.truthy, store.GetBool(tt.key))
		})
	}
}

func TestConfigStore_LoadDiscardsUnsaved(t *testing.T) {
	store := NewConfigStore(map[string]any{keyLimit: 10})
	require.NoError(t, store.Set(keyLimit, 20))

	// Simulate an unsaved change.
	store.mu.Lock()
	store.values[keyLimit] = 30
	store.mu.Unlock()

	require.NoError(t, store.Load())
	assert.Equal(t, 20, store.GetInt(keyLimit))

	store.mu.Lock()
	store.values[keyLimit] = 40
	store.mu.Unlock()
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, 40, store.GetInt(keyLimit))
	assert.Equal(t, 2, store.Saves())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Set(fmt.Sprintf("key.%02d", i), i))
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%02d", i))
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 20)
	assert.Equal(t, 7, store.GetInt("key.07"))
	assert.Equal(t, 20, store.Saves())
}
