package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/store"
)

// ConfigService persists named forecast configurations for reuse
type ConfigService struct {
	logger *logging.Logger
	store  *store.ConfigStore
}

// NewConfigService creates a new ConfigService
func NewConfigService(logger *logging.Logger, configs *store.ConfigStore) *ConfigService {
	return &ConfigService{
		logger: logger,
		store:  configs,
	}
}

// List returns every saved configuration
func (s *ConfigService) List() *models.SavedConfigsResponse {
	return &models.SavedConfigsResponse{Configs: s.store.List()}
}

// Get returns one saved configuration by id
func (s *ConfigService) Get(id string) (*store.SavedConfig, error) {
	saved, ok := s.store.Get(id)
	if !ok {
		return nil, notFoundError(fmt.Sprintf("Config '%s' was not found.", id))
	}
	return &saved, nil
}

// Save validates and persists a configuration under a fresh id
func (s *ConfigService) Save(req *models.SavedConfigRequest) (*store.SavedConfig, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationError("name cannot be empty.")
	}
	cfg := req.Config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, validationError(err.Error())
	}

	saved := store.SavedConfig{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Config:      cfg,
		CreatedAt:   float64(time.Now().UnixNano()) / float64(time.Second),
	}
	if err := s.store.Save(saved); err != nil {
		s.logger.Error("Failed to persist config", "config_id", saved.ID, "error", err.Error())
		return nil, NewServiceError(CodeInternal, "Failed to persist configuration.")
	}

	s.logger.Info("Saved configuration", "config_id", saved.ID, "name", saved.Name)
	return &saved, nil
}

// Delete removes a saved configuration
func (s *ConfigService) Delete(id string) error {
	deleted, err := s.store.Delete(id)
	if err != nil {
		s.logger.Error("Failed to delete config", "config_id", id, "error", err.Error())
		return NewServiceError(CodeInternal, "Failed to delete configuration.")
	}
	if !deleted {
		return notFoundError(fmt.Sprintf("Config '%s' was not found.", id))
	}
	return nil
}
