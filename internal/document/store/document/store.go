// Package document persists documents in memory or PostgreSQL.
package document

import (
	"slices"

	"accredis/internal/document/models"
	id "accredis/pkg/domain"
)

// DefaultListLimit caps list results when the filter sets no limit.
const DefaultListLimit = 100

// Filter selects documents of one clinic, newest first.
type Filter struct {
	ClinicID id.ClinicID
	Status   *models.Status
	Category *models.Category
	Limit    int
}

func (f Filter) limit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}

func (f Filter) matches(d *models.Document) bool {
	if d.ClinicID != f.ClinicID {
		return false
	}
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	if f.Category != nil && d.Category != *f.Category {
		return false
	}
	return true
}

func clone(d *models.Document) *models.Document {
	cp := *d
	cp.Tags = slices.Clone(d.Tags)
	if d.Signature != nil {
		sig := *d.Signature
		cp.Signature = &sig
	}
	return &cp
}
