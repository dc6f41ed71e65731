// Package publisher emits audit events from services.
//
// Compliance events are fail-closed: if the store rejects the write the
// caller gets the error and must abort its operation. Security and operations
// events are best-effort and only logged on failure.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/requestcontext"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit enriches event from the request context and appends it. When called
// inside a PostgreSQL transaction the outbox row commits with it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		if event.Category == audit.CategoryCompliance {
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "compliance audit failed",
					"action", event.Action,
					"user_id", event.UserID,
					"request_id", event.RequestID,
					"error", err,
				)
			}
			return fmt.Errorf("compliance audit persistence failed: %w", err)
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
	return nil
}

// Recent lists the latest events for the admin audit view.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}
