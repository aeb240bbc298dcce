// Package store persists risk-register entries in memory or PostgreSQL.
package store

import (
	"slices"

	"accredis/internal/risk/models"
	id "accredis/pkg/domain"
)

// DefaultListLimit caps list results when the filter sets no limit.
const DefaultListLimit = 100

// Filter selects one clinic's risks, highest score first.
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

func (f Filter) matches(r *models.Risk) bool {
	if r.ClinicID != f.ClinicID {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.Category != nil && r.Category != *f.Category {
		return false
	}
	return true
}

func clone(r *models.Risk) *models.Risk {
	cp := *r
	cp.LinkedDocs = slices.Clone(r.LinkedDocs)
	if r.MitigationPlan != nil {
		plan := *r.MitigationPlan
		cp.MitigationPlan = &plan
	}
	if r.OwnerID != nil {
		owner := *r.OwnerID
		cp.OwnerID = &owner
	}
	return &cp
}
