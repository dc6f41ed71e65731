package models

import (
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

type ScheduleStatus string

const (
	StatusPending  ScheduleStatus = "pending"
	StatusDone     ScheduleStatus = "done"
	StatusCanceled ScheduleStatus = "canceled"
)

func (s ScheduleStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusDone, StatusCanceled:
		return true
	}
	return false
}

type DonationType string

const (
	DonationTypeStation DonationType = "station"
	DonationTypeHome    DonationType = "home"
)

// ParseDonationType accepts "station" or "home".
func ParseDonationType(s string) (DonationType, error) {
	switch DonationType(s) {
	case DonationTypeStation, DonationTypeHome:
		return DonationType(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "donation_type is required").WithDetails("field", "donation_type")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "donation_type must be station or home").WithDetails("field", "donation_type")
	}
}

// Schedule is a planned donation.
//
// Invariants:
//   - a new schedule starts pending
//   - done is terminal: it cannot be canceled or finalized again
//   - canceled may still be finalized
//   - a donor has at most one pending schedule
type Schedule struct {
	ID                  id.ScheduleID
	DonorID             id.DonorID
	PreferredHospitalID *id.HospitalID
	ScheduledAt         time.Time
	DonationType        DonationType
	Status              ScheduleStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func NewSchedule(scheduleID id.ScheduleID, donorID id.DonorID, hospitalID *id.HospitalID, scheduledAt time.Time, donationType DonationType, now time.Time) (*Schedule, error) {
	if scheduledAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "scheduled date cannot be empty")
	}
	if donationType != DonationTypeStation && donationType != DonationTypeHome {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid donation type")
	}
	return &Schedule{
		ID:                  scheduleID,
		DonorID:             donorID,
		PreferredHospitalID: hospitalID,
		ScheduledAt:         scheduledAt,
		DonationType:        donationType,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func (s *Schedule) IsPending() bool {
	return s.Status == StatusPending
}

// CanFinalize rejects schedules that already produced a record.
func (s *Schedule) CanFinalize() error {
	if s.Status == StatusDone {
		return dErrors.New(dErrors.CodeInvariantViolation, "Schedule already marked as done")
	}
	return nil
}

func (s *Schedule) ApplyDone(now time.Time) {
	s.Status = StatusDone
	s.UpdatedAt = now
}

// CanCancel rejects completed donations. Canceling twice is allowed.
func (s *Schedule) CanCancel() error {
	if s.Status == StatusDone {
		return dErrors.New(dErrors.CodeInvariantViolation, "Cannot cancel a completed donation")
	}
	return nil
}

func (s *Schedule) ApplyCancel(now time.Time) {
	s.Status = StatusCanceled
	s.UpdatedAt = now
}
