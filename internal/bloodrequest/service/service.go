package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"lifeline/internal/bloodrequest/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

type Store interface {
	CreateBloodRequest(ctx context.Context, r *models.BloodRequest) error
	FindBloodRequestByID(ctx context.Context, requestID id.BloodRequestID) (*models.BloodRequest, error)
	ListBloodRequests(ctx context.Context) ([]*models.BloodRequest, error)
	MarkBloodRequestFulfilled(ctx context.Context, requestID id.BloodRequestID) error
	DeleteBloodRequest(ctx context.Context, requestID id.BloodRequestID) error
}

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the emergency blood-request board. Anyone signed in may post
// and read; only the requester or a moderator may fulfill or delete.
type Service struct {
	store          Store
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns open requests first, newest first.
func (s *Service) List(ctx context.Context) ([]*models.BloodRequest, error) {
	requests, err := s.store.ListBloodRequests(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood requests")
	}
	return requests, nil
}

// Create posts a request on behalf of the caller.
func (s *Service) Create(ctx context.Context, draft models.Draft) (*models.BloodRequest, error) {
	requester := requestcontext.UserID(ctx)
	r, err := models.NewBloodRequest(id.BloodRequestID(uuid.New()), requester, draft, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	var created *models.BloodRequest
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateBloodRequest(txCtx, r); err != nil {
			return translate(err, "user not found", "failed to create blood request")
		}
		created, err = s.store.FindBloodRequestByID(txCtx, r.ID)
		if err != nil {
			return translate(err, "blood request not found", "failed to load blood request")
		}
		return s.emit(txCtx, audit.EventBloodRequestCreated, r)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "blood request posted",
		"request_id", requestcontext.RequestID(ctx),
		"blood_request_id", r.ID,
		"urgency", r.Urgency,
	)
	return created, nil
}

// Fulfill flips the request to fulfilled. Fulfilling twice succeeds.
func (s *Service) Fulfill(ctx context.Context, requestID id.BloodRequestID) (*models.BloodRequest, error) {
	var out *models.BloodRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.manageable(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.IsFulfilled {
			out = r
			return nil
		}
		if err := s.store.MarkBloodRequestFulfilled(txCtx, requestID); err != nil {
			return translate(err, "blood request not found", "failed to update blood request")
		}
		r.MarkFulfilled()
		out = r
		return s.emit(txCtx, audit.EventBloodRequestFulfilled, r)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, requestID id.BloodRequestID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.manageable(txCtx, requestID)
		if err != nil {
			return err
		}
		if err := s.store.DeleteBloodRequest(txCtx, requestID); err != nil {
			return translate(err, "blood request not found", "failed to delete blood request")
		}
		return s.emit(txCtx, audit.EventBloodRequestDeleted, r)
	})
}

func (s *Service) manageable(ctx context.Context, requestID id.BloodRequestID) (*models.BloodRequest, error) {
	r, err := s.store.FindBloodRequestByID(ctx, requestID)
	if err != nil {
		return nil, translate(err, "blood request not found", "failed to load blood request")
	}
	if !r.CanManage(requestcontext.UserID(ctx), requestcontext.Role(ctx)) {
		return nil, dErrors.New(dErrors.CodeForbidden, "Only the requester or an admin can change this request")
	}
	return r, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, r *models.BloodRequest) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		UserID:  r.RequesterID,
		ActorID: requestcontext.UserID(ctx),
		Subject: r.ID.String(),
		Action:  string(event),
		Reason:  string(r.Urgency),
	})
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
