package driven

// ConfigStore is a flat key/value view of the settings file.
// Keys are dotted, e.g. "chunking.chunk_size"; getters return the zero value
// for missing keys or values of the wrong kind.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	GetString(key string) string

	GetInt(key string) int

	// GetFloat converts integers too.
	GetFloat(key string) float64

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
