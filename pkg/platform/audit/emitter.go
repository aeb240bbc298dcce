package audit

import (
	"context"
	"log/slog"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/requestcontext"
)

// Publisher persists audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Emitter builds events with request metadata and hands them to a Publisher.
// Services call it inside their unit of work: a publish failure fails the
// operation so no record change commits without its trail.
type Emitter struct {
	logger    *slog.Logger
	publisher Publisher
}

func NewEmitter(logger *slog.Logger, publisher Publisher) *Emitter {
	return &Emitter{logger: logger, publisher: publisher}
}

// Record emits action for subject on behalf of actor.
func (e *Emitter) Record(ctx context.Context, action AuditEvent, actor id.UserID, clinicID id.ClinicID, subject string) error {
	return e.emit(ctx, Event{
		Action:   string(action),
		ActorID:  actor,
		ClinicID: clinicID,
		Subject:  subject,
		Decision: "allowed",
	})
}

// RecordRefusal emits a security event for a refused request. Refusals are
// best effort: the caller already returns an error, so publish failures are
// only logged.
func (e *Emitter) RecordRefusal(ctx context.Context, action AuditEvent, actor id.UserID, clinicID id.ClinicID, subject, reason string) {
	err := e.emit(ctx, Event{
		Action:   string(action),
		ActorID:  actor,
		ClinicID: clinicID,
		Subject:  subject,
		Decision: "refused",
		Reason:   reason,
	})
	if err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "failed to record refusal", "action", string(action), "error", err)
	}
}

func (e *Emitter) emit(ctx context.Context, event Event) error {
	if e == nil {
		return nil
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Category = AuditEvent(event.Action).Category()

	if e.logger != nil {
		e.logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"category", string(event.Category),
			"actor_id", event.ActorID.String(),
			"subject", event.Subject,
			"decision", event.Decision,
			"request_id", event.RequestID,
		)
	}
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
