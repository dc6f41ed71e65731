package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

type Store interface {
	CreateHospital(ctx context.Context, h *models.Hospital) error
	FindHospitalByID(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error)
	ListHospitals(ctx context.Context) ([]*models.Hospital, error)
	UpdateHospitalDetails(ctx context.Context, h *models.Hospital) error
	DeleteHospital(ctx context.Context, hospitalID id.HospitalID) error
}

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Details are the editable catalogue fields; nil leaves a field unchanged.
type Details struct {
	Name     *string
	Location *string
}

// Service owns the hospital catalogue.
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

func (s *Service) List(ctx context.Context) ([]*models.Hospital, error) {
	hospitals, err := s.store.ListHospitals(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list hospitals")
	}
	return hospitals, nil
}

func (s *Service) Get(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error) {
	h, err := s.store.FindHospitalByID(ctx, hospitalID)
	if err != nil {
		return nil, translate(err, "failed to load hospital")
	}
	return h, nil
}

func (s *Service) Create(ctx context.Context, name, location string) (*models.Hospital, error) {
	h, err := models.NewHospital(id.HospitalID(uuid.New()), name, location, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateHospital(txCtx, h); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create hospital")
		}
		return s.emit(txCtx, audit.EventHospitalCreated, h)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "hospital created",
		"request_id", requestcontext.RequestID(ctx),
		"hospital_id", h.ID,
	)
	return h, nil
}

// Update edits name and location. Counters cannot be changed this way.
func (s *Service) Update(ctx context.Context, hospitalID id.HospitalID, details Details) (*models.Hospital, error) {
	var updated *models.Hospital
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		h, err := s.store.FindHospitalByID(txCtx, hospitalID)
		if err != nil {
			return translate(err, "failed to load hospital")
		}
		name, location := h.Name, h.Location
		if details.Name != nil {
			name = *details.Name
		}
		if details.Location != nil {
			location = *details.Location
		}
		if err := h.Rename(name, location, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.UpdateHospitalDetails(txCtx, h); err != nil {
			return translate(err, "failed to update hospital")
		}
		updated = h
		return s.emit(txCtx, audit.EventHospitalUpdated, h)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a hospital; schedules and records that referenced it keep
// existing without a hospital.
func (s *Service) Delete(ctx context.Context, hospitalID id.HospitalID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		h, err := s.store.FindHospitalByID(txCtx, hospitalID)
		if err != nil {
			return translate(err, "failed to load hospital")
		}
		if err := s.store.DeleteHospital(txCtx, hospitalID); err != nil {
			return translate(err, "failed to delete hospital")
		}
		return s.emit(txCtx, audit.EventHospitalDeleted, h)
	})
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, h *models.Hospital) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		UserID:  requestcontext.UserID(ctx),
		Subject: h.ID.String(),
		Action:  string(action),
		Reason:  h.Name,
	})
}

func translate(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "hospital not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
