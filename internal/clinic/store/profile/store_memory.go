package profile

import (
	"context"
	"fmt"
	"sync"

	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

// InMemory stores profiles keyed by principal id.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.UserID]*models.Profile)}
}

// Create inserts a profile. Returns sentinel.ErrAlreadyUsed when the
// principal already has one.
func (s *InMemory) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return fmt.Errorf("profile exists: %w", sentinel.ErrAlreadyUsed)
	}
	s.profiles[p.ID] = clone(p)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	return clone(p), nil
}

// Execute validates and mutates a profile atomically.
func (s *InMemory) Execute(_ context.Context, userID id.UserID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	working := clone(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.profiles[userID] = clone(working)
	return working, nil
}

func clone(p *models.Profile) *models.Profile {
	cp := *p
	if p.ClinicID != nil {
		clinicID := *p.ClinicID
		cp.ClinicID = &clinicID
	}
	return &cp
}
