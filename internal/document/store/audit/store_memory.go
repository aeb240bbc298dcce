// Package audit persists compliance audits. Audits are append-only.
package audit

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"accredis/internal/document/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	audits map[id.AuditID]*models.Audit
}

func NewInMemory() *InMemory {
	return &InMemory{audits: make(map[id.AuditID]*models.Audit)}
}

func (s *InMemory) Create(_ context.Context, a *models.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.audits[a.ID]; ok {
		return fmt.Errorf("audit id taken: %w", sentinel.ErrAlreadyUsed)
	}
	s.audits[a.ID] = clone(a)
	return nil
}

// ListByDocument returns a document's audits, newest first.
func (s *InMemory) ListByDocument(_ context.Context, docID id.DocumentID) ([]*models.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Audit{}
	for _, a := range s.audits {
		if a.DocumentID == docID {
			out = append(out, clone(a))
		}
	}
	slices.SortFunc(out, func(a, b *models.Audit) int {
		return b.AuditedAt.Compare(a.AuditedAt)
	})
	return out, nil
}

func clone(a *models.Audit) *models.Audit {
	cp := *a
	cp.Issues = slices.Clone(a.Issues)
	cp.Recommendations = slices.Clone(a.Recommendations)
	cp.Coverage = maps.Clone(a.Coverage)
	return &cp
}
