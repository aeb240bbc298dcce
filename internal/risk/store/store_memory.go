package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"accredis/internal/risk/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	risks map[id.RiskID]*models.Risk
}

func NewInMemory() *InMemory {
	return &InMemory{risks: make(map[id.RiskID]*models.Risk)}
}

func (s *InMemory) Create(_ context.Context, r *models.Risk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.risks[r.ID]; ok {
		return fmt.Errorf("risk id taken: %w", sentinel.ErrAlreadyUsed)
	}
	s.risks[r.ID] = clone(r)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, riskID id.RiskID) (*models.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.risks[riskID]
	if !ok {
		return nil, fmt.Errorf("risk not found: %w", sentinel.ErrNotFound)
	}
	return clone(r), nil
}

// List orders by score descending, newest first among equal scores.
func (s *InMemory) List(_ context.Context, f Filter) ([]*models.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Risk{}
	for _, r := range s.risks {
		if f.matches(r) {
			out = append(out, clone(r))
		}
	}
	slices.SortFunc(out, func(a, b *models.Risk) int {
		return cmp.Or(
			cmp.Compare(b.Score(), a.Score()),
			b.CreatedAt.Compare(a.CreatedAt),
		)
	})
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

// Execute runs validate then mutate under the write lock.
func (s *InMemory) Execute(_ context.Context, riskID id.RiskID, validate func(*models.Risk) error, mutate func(*models.Risk)) (*models.Risk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.risks[riskID]
	if !ok {
		return nil, fmt.Errorf("risk not found: %w", sentinel.ErrNotFound)
	}
	working := clone(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.risks[riskID] = clone(working)
	return working, nil
}
