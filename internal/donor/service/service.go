package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	authmodels "lifeline/internal/auth/models"
	donationmodels "lifeline/internal/donation/models"
	"lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

type UserStore interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

type DonorStore interface {
	CreateDonor(ctx context.Context, donor *models.Donor) error
	FindDonorByUserID(ctx context.Context, userID id.UserID) (*models.Donor, error)
	UpdateDonorProfile(ctx context.Context, donor *models.Donor) error
}

// ScheduleReader counts a donor's open schedules for the dashboard.
type ScheduleReader interface {
	ListSchedulesByDonor(ctx context.Context, donorID id.DonorID) ([]*donationmodels.Schedule, error)
}

// Dashboard is the donor's landing summary.
type Dashboard struct {
	Profile          *models.Profile
	PendingSchedules int
}

// Service manages donor profiles.
type Service struct {
	users     UserStore
	donors    DonorStore
	schedules ScheduleReader
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(users UserStore, donors DonorStore, schedules ScheduleReader, opts ...Option) *Service {
	s := &Service{users: users, donors: donors, schedules: schedules, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure returns the caller's donor profile, creating an empty one on first
// use. Safe to call concurrently for the same user.
func (s *Service) Ensure(ctx context.Context, userID id.UserID) (*models.Donor, error) {
	donor, err := s.donors.FindDonorByUserID(ctx, userID)
	if err == nil {
		return donor, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
	}

	donor = models.NewDonor(id.DonorID(uuid.New()), userID, requestcontext.Now(ctx))
	err = s.donors.CreateDonor(ctx, donor)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "donor profile created",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"donor_id", donor.ID,
		)
		return donor, nil
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		// lost a race with a concurrent first request
		donor, err = s.donors.FindDonorByUserID(ctx, userID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
		}
		return donor, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor profile")
	}
}

// Profile returns the caller's profile with its account.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	donor, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withUser(ctx, donor)
}

// UpdateProfile applies a partial update. Counters are never touched here.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	donor, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := donor.Apply(update, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.donors.UpdateDonorProfile(ctx, donor); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donor profile")
	}
	// reload so counters reflect the stored values rather than our snapshot
	donor, err = s.donors.FindDonorByUserID(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
	}
	return s.withUser(ctx, donor)
}

// Dashboard returns the profile and the number of pending schedules.
func (s *Service) Dashboard(ctx context.Context, userID id.UserID) (*Dashboard, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListSchedulesByDonor(ctx, profile.Donor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schedules")
	}
	pending := 0
	for _, sc := range schedules {
		if sc.IsPending() {
			pending++
		}
	}
	return &Dashboard{Profile: profile, PendingSchedules: pending}, nil
}

func (s *Service) withUser(ctx context.Context, donor *models.Donor) (*models.Profile, error) {
	user, err := s.users.FindUserByID(ctx, donor.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return &models.Profile{Donor: donor, User: user}, nil
}
