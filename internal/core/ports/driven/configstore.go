package driven

// ConfigStore holds foodsync settings as flat dotted keys such as
// "remote.base_url" or "import.limit_per_file".
//
// Typed getters return the zero value when the key is missing or holds a
// different type; callers apply their own defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts any integral value.
	GetInt(key string) int

	// GetFloat accepts integers as well as floats.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Keys returns the set keys in sorted order.
	Keys() []string

	// Set stores a value and persists it at once.
	Set(key string, value any) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values with the persisted ones.
	Load() error

	// Path identifies where the values are persisted.
	Path() string
}
