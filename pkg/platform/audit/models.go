package audit

import (
	"context"
	"time"

	id "accredis/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// signatures, archival, compliance audits.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine record changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from services to capture record changes. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the principal that performed the action.
	ActorID id.UserID
	// ClinicID scopes the event to a tenant; nil for profile events.
	ClinicID id.ClinicID
	// Subject is the id of the affected record.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventClinicCreated AuditEvent = "clinic_created"
	EventClinicUpdated AuditEvent = "clinic_updated"

	EventProfileCreated AuditEvent = "profile_created"
	EventProfileUpdated AuditEvent = "profile_updated"

	EventDocumentCreated   AuditEvent = "document_created"
	EventDocumentUpdated   AuditEvent = "document_updated"
	EventDocumentSubmitted AuditEvent = "document_submitted"
	EventDocumentPublished AuditEvent = "document_published"
	EventDocumentArchived  AuditEvent = "document_archived"
	EventDocumentAudited   AuditEvent = "document_audited"

	EventRiskCreated AuditEvent = "risk_created"
	EventRiskUpdated AuditEvent = "risk_updated"

	EventAccessDenied      AuditEvent = "access_denied"
	EventTransitionRefused AuditEvent = "transition_refused"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentPublished: CategoryCompliance,
	EventDocumentArchived:  CategoryCompliance,
	EventDocumentAudited:   CategoryCompliance,
	EventClinicCreated:     CategoryCompliance,

	EventAccessDenied:      CategorySecurity,
	EventTransitionRefused: CategorySecurity,

	EventClinicUpdated:     CategoryOperations,
	EventProfileCreated:    CategoryOperations,
	EventProfileUpdated:    CategoryOperations,
	EventDocumentCreated:   CategoryOperations,
	EventDocumentUpdated:   CategoryOperations,
	EventDocumentSubmitted: CategoryOperations,
	EventRiskCreated:       CategoryOperations,
	EventRiskUpdated:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClinic(ctx context.Context, clinicID id.ClinicID, limit int) ([]Event, error)
}
