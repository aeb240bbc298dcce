package access

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"accredis/pkg/requestcontext"
)

// Enforcer applies Evaluate on behalf of services and records denials.
// A nil *Enforcer still evaluates, it only skips logging and metrics.
type Enforcer struct {
	logger  *slog.Logger
	metrics *Metrics
}

func NewEnforcer(logger *slog.Logger, metrics *Metrics) *Enforcer {
	return &Enforcer{logger: logger, metrics: metrics}
}

// Check returns the uniform forbidden error when the policy denies.
func (e *Enforcer) Check(ctx context.Context, p Principal, op Operation, entity Entity, before, after *Row) error {
	err := Evaluate(p, op, entity, before, after)
	if err == nil || e == nil {
		return err
	}
	e.metrics.ObserveDenial(entity, op)
	trace.SpanFromContext(ctx).AddEvent("access denied", trace.WithAttributes(
		attribute.String("access.entity", string(entity)),
		attribute.String("access.operation", string(op)),
	))
	if e.logger != nil {
		e.logger.InfoContext(ctx, "access denied",
			"principal_id", p.ID.String(),
			"entity", string(entity),
			"operation", string(op),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return err
}
