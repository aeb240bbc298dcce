// Package domain holds typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so a ClinicID can never be
// passed where a DocumentID is expected. Parse functions are the only
// trust-boundary constructors and reject nil UUIDs.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "accredis/pkg/domain-errors"
)

// UserID identifies a principal. A profile shares the id of its principal.
type UserID uuid.UUID

// ClinicID identifies a tenant clinic.
type ClinicID uuid.UUID

// DocumentID identifies a policy document.
type DocumentID uuid.UUID

// RiskID identifies a risk-register entry.
type RiskID uuid.UUID

// AuditID identifies a compliance audit of a document.
type AuditID uuid.UUID

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id ClinicID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id RiskID) String() string     { return uuid.UUID(id).String() }
func (id AuditID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ClinicID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RiskID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AuditID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ClinicID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RiskID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AuditID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ClinicID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RiskID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AuditID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewClinicID() ClinicID     { return ClinicID(uuid.New()) }
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }
func NewRiskID() RiskID         { return RiskID(uuid.New()) }
func NewAuditID() AuditID       { return AuditID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

func ParseClinicID(s string) (ClinicID, error) {
	u, err := parseUUID(s, "clinic_id")
	return ClinicID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document_id")
	return DocumentID(u), err
}

func ParseRiskID(s string) (RiskID, error) {
	u, err := parseUUID(s, "risk_id")
	return RiskID(u), err
}

func ParseAuditID(s string) (AuditID, error) {
	u, err := parseUUID(s, "audit_id")
	return AuditID(u), err
}

// maxIDLength bounds input before handing it to uuid.Parse, which accepts
// several encodings up to the urn: form.
const maxIDLength = 45

func parseUUID(s, field string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}
