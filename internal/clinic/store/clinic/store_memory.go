package clinic

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

// InMemory stores clinics for tests and single-process development.
// Records are copied on the way in and out so callers never share state
// with the store.
type InMemory struct {
	mu      sync.RWMutex
	clinics map[id.ClinicID]*models.Clinic
	slugs   map[string]id.ClinicID
}

func NewInMemory() *InMemory {
	return &InMemory{
		clinics: make(map[id.ClinicID]*models.Clinic),
		slugs:   make(map[string]id.ClinicID),
	}
}

// Create inserts a clinic. Returns sentinel.ErrAlreadyUsed when the slug or
// id is taken.
func (s *InMemory) Create(_ context.Context, c *models.Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clinics[c.ID]; ok {
		return fmt.Errorf("clinic id taken: %w", sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.slugs[c.Slug]; ok {
		return fmt.Errorf("clinic slug taken: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *c
	s.clinics[c.ID] = &cp
	s.slugs[c.Slug] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, clinicID id.ClinicID) (*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clinics[clinicID]
	if !ok {
		return nil, fmt.Errorf("clinic not found: %w", sentinel.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

// ListByIDs returns the clinics that exist among ids, oldest first.
func (s *InMemory) ListByIDs(_ context.Context, ids []id.ClinicID) ([]*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Clinic, 0, len(ids))
	for _, clinicID := range ids {
		if c, ok := s.clinics[clinicID]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortByCreated(out)
	return out, nil
}

// ListIDsByOwner returns the ids of clinics owned by owner.
func (s *InMemory) ListIDsByOwner(_ context.Context, owner id.UserID) ([]id.ClinicID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []*models.Clinic
	for _, c := range s.clinics {
		if c.OwnerID == owner {
			owned = append(owned, c)
		}
	}
	sortByCreated(owned)
	ids := make([]id.ClinicID, 0, len(owned))
	for _, c := range owned {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// Execute runs validate then mutate under the store lock and persists the
// result. Validation errors are returned unchanged and nothing is written.
func (s *InMemory) Execute(_ context.Context, clinicID id.ClinicID, validate func(*models.Clinic) error, mutate func(*models.Clinic)) (*models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.clinics[clinicID]
	if !ok {
		return nil, fmt.Errorf("clinic not found: %w", sentinel.ErrNotFound)
	}
	working := *current
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	stored := working
	s.clinics[clinicID] = &stored
	return &working, nil
}

func sortByCreated(clinics []*models.Clinic) {
	slices.SortFunc(clinics, func(a, b *models.Clinic) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
