package document

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"accredis/internal/document/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

// InMemory keeps documents in a map guarded by one mutex. Execute holds
// the write lock across validate and mutate, which is what makes status
// transitions single-writer.
type InMemory struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]*models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemory) Create(_ context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[d.ID]; ok {
		return fmt.Errorf("document id taken: %w", sentinel.ErrAlreadyUsed)
	}
	s.docs[d.ID] = clone(d)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
	}
	return clone(d), nil
}

// FindByIDs returns the documents that exist among ids, in no set order.
func (s *InMemory) FindByIDs(_ context.Context, ids []id.DocumentID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, 0, len(ids))
	for _, docID := range ids {
		if d, ok := s.docs[docID]; ok {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context, f Filter) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Document{}
	for _, d := range s.docs {
		if f.matches(d) {
			out = append(out, clone(d))
		}
	}
	slices.SortFunc(out, func(a, b *models.Document) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

// Execute runs validate then mutate under the write lock. Validation errors
// are returned unchanged and nothing is written.
func (s *InMemory) Execute(_ context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
	}
	working := clone(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.docs[docID] = clone(working)
	return working, nil
}
