package models

import (
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

const (
	MinAge         = 18
	MaxAge         = 100
	MinWeightKg    = 50.0
	MaxPhoneLen    = 20
	MaxLocationLen = 255
)

// Donor is the donation profile attached one-to-one to a user account.
//
// Invariants:
//   - TotalDonations equals the number of donation records reachable through
//     the donor's schedules; only finalization and reconciliation change it
//   - LivesSaved only grows, through the lives-saved update
//   - Age, when set, is within [18, 100]; Weight, when set, is above 50kg
type Donor struct {
	ID             id.DonorID
	UserID         id.UserID
	Age            *int
	Weight         *float64
	Phone          string
	Location       string
	BloodType      id.BloodType
	HealthInfo     string
	TotalDonations int
	LivesSaved     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDonor creates an empty profile for a user.
func NewDonor(donorID id.DonorID, userID id.UserID, now time.Time) *Donor {
	return &Donor{
		ID:        donorID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Age        *int
	Weight     *float64
	Phone      *string
	Location   *string
	BloodType  *id.BloodType
	HealthInfo *string
}

// Validate checks field constraints without touching a donor.
func (u ProfileUpdate) Validate() error {
	if u.Age != nil && (*u.Age < MinAge || *u.Age > MaxAge) {
		return dErrors.New(dErrors.CodeValidation, "Age must be between 18 and 100.").
			WithDetails("field", "age")
	}
	if u.Weight != nil && *u.Weight <= MinWeightKg {
		return dErrors.New(dErrors.CodeValidation, "Weight must be above 50kg to be eligible for blood donation.").
			WithDetails("field", "weight")
	}
	if u.Weight != nil && *u.Weight >= 1000 {
		return dErrors.New(dErrors.CodeValidation, "Weight must be less than 1000kg.").
			WithDetails("field", "weight")
	}
	if u.Phone != nil && len(*u.Phone) > MaxPhoneLen {
		return dErrors.New(dErrors.CodeValidation, "Phone must be 20 characters or less.").
			WithDetails("field", "phone")
	}
	if u.Location != nil && len(*u.Location) > MaxLocationLen {
		return dErrors.New(dErrors.CodeValidation, "Location must be 255 characters or less.").
			WithDetails("field", "location")
	}
	if u.BloodType != nil && *u.BloodType != "" && !u.BloodType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid blood type.").
			WithDetails("field", "blood_type")
	}
	return nil
}

// Apply validates and writes the update onto d.
func (d *Donor) Apply(u ProfileUpdate, now time.Time) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Age != nil {
		age := *u.Age
		d.Age = &age
	}
	if u.Weight != nil {
		weight := *u.Weight
		d.Weight = &weight
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Location != nil {
		d.Location = *u.Location
	}
	if u.BloodType != nil {
		d.BloodType = *u.BloodType
	}
	if u.HealthInfo != nil {
		d.HealthInfo = *u.HealthInfo
	}
	d.UpdatedAt = now
	return nil
}
