package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "accredis/pkg/domain"
	audit "accredis/pkg/platform/audit"
	txcontext "accredis/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is in context so the trail commits with the
// record change it describes.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	var clinicID *uuid.UUID
	if !event.ClinicID.IsNil() {
		c := uuid.UUID(event.ClinicID)
		clinicID = &c
	}

	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, actor_id, clinic_id, subject,
			action, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		uuid.UUID(event.ActorID),
		clinicID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByClinic returns the newest events for a clinic first.
func (s *Store) ListByClinic(ctx context.Context, clinicID id.ClinicID, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT category, occurred_at, actor_id, clinic_id, subject,
		       action, decision, reason, request_id
		FROM audit_events
		WHERE clinic_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(clinicID), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
			actorID  uuid.UUID
			clinic   uuid.NullUUID
		)
		if err := rows.Scan(&category, &e.Timestamp, &actorID, &clinic, &e.Subject,
			&e.Action, &e.Decision, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.ActorID = id.UserID(actorID)
		if clinic.Valid {
			e.ClinicID = id.ClinicID(clinic.UUID)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
