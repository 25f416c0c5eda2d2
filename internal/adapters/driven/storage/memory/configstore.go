// Package memory provides an in-memory ConfigStore for tests and throwaway runs.
package memory

import (
	"sync"

	"github.com/custodia-labs/voxqa/internal/adapters/driven/config"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save and Load are no-ops.
type ConfigStore struct {
	values sync.Map
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	return s.values.Load(key)
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.values.Load(key)
	return config.String(v)
}

func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.values.Load(key)
	return config.Int(v)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.values.Load(key)
	return config.Float(v)
}

// Set never fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.values.Store(key, value)
	return nil
}

func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

// Path is ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
