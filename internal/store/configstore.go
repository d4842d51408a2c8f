package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/forecastlab/forecastlab/internal/forecast"
)

// SavedConfig is one persisted forecast configuration
type SavedConfig struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Config      forecast.Config `json:"config"`
	CreatedAt   float64         `json:"created_at"`
}

// ConfigStore persists saved configurations to a JSON file. The whole file is
// rewritten on every change; a missing or corrupt file starts empty.
type ConfigStore struct {
	mu      sync.RWMutex
	path    string
	configs map[string]SavedConfig
}

// NewConfigStore loads existing configs from path when present
func NewConfigStore(path string) *ConfigStore {
	s := &ConfigStore{
		path:    path,
		configs: make(map[string]SavedConfig),
	}

	content, err := os.ReadFile(path)
	if err != nil || len(content) == 0 {
		return s
	}
	var items []SavedConfig
	if err := json.Unmarshal(content, &items); err != nil {
		return s
	}
	for _, item := range items {
		s.configs[item.ID] = item
	}
	return s
}

// List returns all saved configs ordered by creation time
func (s *ConfigStore) List() []SavedConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]SavedConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		items = append(items, cfg)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt < items[j].CreatedAt
	})
	return items
}

// Get returns one saved config by id
func (s *ConfigStore) Get(id string) (SavedConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[id]
	return cfg, ok
}

// Save stores a config and persists the store
func (s *ConfigStore) Save(cfg SavedConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
	return s.persist()
}

// Delete removes a config by id; unknown ids report false
func (s *ConfigStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[id]; !ok {
		return false, nil
	}
	delete(s.configs, id)
	return true, s.persist()
}

func (s *ConfigStore) persist() error {
	items := make([]SavedConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		items = append(items, cfg)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode configs: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write configs: %w", err)
	}
	return nil
}
