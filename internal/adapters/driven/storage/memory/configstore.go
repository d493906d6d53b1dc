package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory driven.ConfigStore for tests and for running
// without a config file. It follows the file store's model: Set persists at
// once, and Load returns to the last persisted state.
type ConfigStore struct {
	mu        sync.RWMutex
	values    map[string]any
	persisted map[string]any
	saves     int
}

// NewConfigStore creates a store holding the given dot-notation values.
// Seed values count as already persisted.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	values := make(map[string]any)
	for _, m := range seed {
		maps.Copy(values, m)
	}
	return &ConfigStore{
		values:    values,
		persisted: maps.Clone(values),
	}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns the value for key if it is a string.
func (s *ConfigStore) GetString(key string) string {
	str, _ := s.getAs(key).(string)
	return str
}

// GetInt returns the value for key if it is integral. Whole floats are
// accepted the way a decoded JSON or TOML document would carry them.
func (s *ConfigStore) GetInt(key string) int {
	switch v := s.getAs(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return 0
}

// GetBool returns the value for key if it is a bool.
func (s *ConfigStore) GetBool(key string) bool {
	b, _ := s.getAs(key).(bool)
	return b
}

// GetFloat returns the value for key as a float64. Integers are converted.
func (s *ConfigStore) GetFloat(key string) float64 {
	switch v := s.getAs(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (s *ConfigStore) getAs(key string) any {
	v, _ := s.Get(key)
	return v
}

// Keys returns all configured keys in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Set stores a value and persists it.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.persist()
	return nil
}

// Save persists the current values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
	return nil
}

// persist snapshots the values (caller must hold lock).
func (s *ConfigStore) persist() {
	s.persisted = maps.Clone(s.values)
	s.saves++
}

// Load discards unpersisted changes.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = maps.Clone(s.persisted)
	return nil
}

// Saves returns how many times the values have been persisted.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Path returns a placeholder, as nothing is written to disk.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
