// Package access decides whether a principal may perform an operation on a
// row. Evaluate is a pure function over (principal, operation, entity,
// row-before, row-after); it performs no I/O so the whole matrix is tested
// without a database.
package access

import (
	"github.com/google/uuid"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// Operation is a row-level action.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
)

// Entity names a record family governed by the policy.
type Entity string

const (
	EntityClinic   Entity = "clinic"
	EntityProfile  Entity = "profile"
	EntityDocument Entity = "document"
	EntityRisk     Entity = "risk"
	EntityAudit    Entity = "audit"
)

// Row is the policy-relevant projection of a record. Fields that do not
// apply to an entity stay zero.
type Row struct {
	// ID is the row's own id. Profile rows use the principal id.
	ID uuid.UUID
	// ClinicID is the owning clinic; for clinic rows it equals ID.
	ClinicID  id.ClinicID
	OwnerID   id.UserID
	CreatedBy id.UserID
	AuditedBy id.UserID
}

// ClinicRow projects a clinic.
func ClinicRow(clinicID id.ClinicID, owner id.UserID) *Row {
	return &Row{ID: uuid.UUID(clinicID), ClinicID: clinicID, OwnerID: owner}
}

// ProfileRow projects a profile.
func ProfileRow(userID id.UserID) *Row {
	return &Row{ID: uuid.UUID(userID)}
}

// DocumentRow projects a document.
func DocumentRow(docID id.DocumentID, clinicID id.ClinicID, createdBy id.UserID) *Row {
	return &Row{ID: uuid.UUID(docID), ClinicID: clinicID, CreatedBy: createdBy}
}

// RiskRow projects a risk.
func RiskRow(riskID id.RiskID, clinicID id.ClinicID) *Row {
	return &Row{ID: uuid.UUID(riskID), ClinicID: clinicID}
}

// AuditRow projects an audit; clinicID is the audited document's clinic.
func AuditRow(auditID id.AuditID, clinicID id.ClinicID, auditedBy id.UserID) *Row {
	return &Row{ID: uuid.UUID(auditID), ClinicID: clinicID, AuditedBy: auditedBy}
}

var errForbidden = dErrors.New(dErrors.CodeForbidden, "access denied")

// ErrForbidden is the uniform denial. Callers must not add row details to it.
func ErrForbidden() error {
	return errForbidden
}

// Evaluate returns nil when the operation is allowed and the uniform
// forbidden error otherwise. Select reads before; insert reads after;
// update reads both.
func Evaluate(p Principal, op Operation, entity Entity, before, after *Row) error {
	if CanAccess(p, op, entity, before, after) {
		return nil
	}
	return errForbidden
}

// CanAccess is the boolean form of Evaluate.
func CanAccess(p Principal, op Operation, entity Entity, before, after *Row) bool {
	if p.ID.IsNil() {
		return false
	}
	switch op {
	case OpSelect:
		if before == nil {
			return false
		}
	case OpInsert:
		if after == nil {
			return false
		}
	case OpUpdate:
		if before == nil || after == nil {
			return false
		}
	default:
		return false
	}

	switch entity {
	case EntityClinic:
		return clinicRule(p, op, before, after)
	case EntityProfile:
		return profileRule(p, op, before, after)
	case EntityDocument:
		return documentRule(p, op, before, after)
	case EntityRisk:
		return riskRule(p, op, before, after)
	case EntityAudit:
		return auditRule(p, op, before, after)
	default:
		return false
	}
}

func clinicRule(p Principal, op Operation, before, after *Row) bool {
	switch op {
	case OpSelect:
		return before.OwnerID == p.ID || p.IsMember(before.ClinicID)
	case OpInsert:
		return after.OwnerID == p.ID
	case OpUpdate:
		// Ownership cannot be handed over through an update.
		return before.OwnerID == p.ID && after.OwnerID == p.ID
	}
	return false
}

func profileRule(p Principal, op Operation, before, after *Row) bool {
	self := uuid.UUID(p.ID)
	switch op {
	case OpSelect:
		return before.ID == self
	case OpInsert:
		return after.ID == self
	case OpUpdate:
		return before.ID == self && after.ID == self
	}
	return false
}

func documentRule(p Principal, op Operation, before, after *Row) bool {
	switch op {
	case OpSelect:
		return p.BelongsTo(before.ClinicID)
	case OpInsert:
		return after.CreatedBy == p.ID && p.BelongsTo(after.ClinicID)
	case OpUpdate:
		if !p.BelongsTo(before.ClinicID) || !p.BelongsTo(after.ClinicID) {
			return false
		}
		return before.CreatedBy == p.ID || p.RoleIn(before.ClinicID).IsManagerial()
	}
	return false
}

func riskRule(p Principal, op Operation, before, after *Row) bool {
	switch op {
	case OpSelect:
		return p.BelongsTo(before.ClinicID)
	case OpInsert:
		return p.BelongsTo(after.ClinicID)
	case OpUpdate:
		return p.BelongsTo(before.ClinicID) && p.BelongsTo(after.ClinicID)
	}
	return false
}

func auditRule(p Principal, op Operation, before, after *Row) bool {
	switch op {
	case OpSelect:
		return p.BelongsTo(before.ClinicID)
	case OpInsert:
		return after.AuditedBy == p.ID && p.BelongsTo(after.ClinicID)
	}
	// Audits are create-only.
	return false
}
