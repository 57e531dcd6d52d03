package prefs

import (
	"context"
	"sync"

	"radiology-portal/internal/models"
)

type MemoryStore struct {
	mu       sync.RWMutex
	defaults Defaults
	theme    models.Theme
	geometry map[models.WindowRole]models.WindowGeometry
}

func NewMemoryStore(defaults Defaults) *MemoryStore {
	return &MemoryStore{
		defaults: defaults,
		geometry: make(map[models.WindowRole]models.WindowGeometry),
	}
}

func (s *MemoryStore) Theme(ctx context.Context) (models.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.theme == "" {
		return s.defaults.theme(), nil
	}
	return s.theme, nil
}

func (s *MemoryStore) SetTheme(ctx context.Context, theme models.Theme) error {
	if err := checkTheme(theme); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	return nil
}

func (s *MemoryStore) Geometry(ctx context.Context, role models.WindowRole) (models.WindowGeometry, error) {
	if err := checkRole(role); err != nil {
		return models.WindowGeometry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.geometry[role]; ok {
		return g, nil
	}
	return s.defaults.geometry(role), nil
}

func (s *MemoryStore) SetGeometry(ctx context.Context, role models.WindowRole, g models.WindowGeometry) error {
	if err := checkRole(role); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry[role] = g
	return nil
}
