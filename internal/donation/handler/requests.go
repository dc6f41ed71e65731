package handler

import (
	"strings"
	"time"

	"lifeline/internal/donation/models"
	"lifeline/internal/donation/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

type ScheduleRequest struct {
	ScheduledDate       *time.Time `json:"scheduled_date"`
	DonationType        string     `json:"donation_type"`
	PreferredHospitalID *string    `json:"preferred_hospital_id"`

	input service.ScheduleInput
}

func (r *ScheduleRequest) Normalize() {
	r.DonationType = strings.ToLower(strings.TrimSpace(r.DonationType))
	if r.PreferredHospitalID != nil {
		*r.PreferredHospitalID = strings.TrimSpace(*r.PreferredHospitalID)
	}
}

func (r *ScheduleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ScheduledDate == nil || r.ScheduledDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "scheduled_date is required").WithDetails("field", "scheduled_date")
	}
	donationType, err := models.ParseDonationType(r.DonationType)
	if err != nil {
		return err
	}
	r.input = service.ScheduleInput{ScheduledAt: r.ScheduledDate.UTC(), DonationType: donationType}
	if r.PreferredHospitalID != nil && *r.PreferredHospitalID != "" {
		hospitalID, err := id.ParseHospitalID(*r.PreferredHospitalID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "preferred_hospital_id must be a valid id").WithDetails("field", "preferred_hospital_id")
		}
		r.input.PreferredHospitalID = &hospitalID
	}
	return nil
}

// FinalizeRequest is optional; an empty body records one unit with no
// hospital.
type FinalizeRequest struct {
	HospitalID  *string  `json:"hospital_id"`
	BloodAmount *float64 `json:"blood_amount"`
}

func (r *FinalizeRequest) input() (service.FinalizeInput, error) {
	in := service.FinalizeInput{BloodAmount: r.BloodAmount}
	if r.HospitalID != nil && strings.TrimSpace(*r.HospitalID) != "" {
		hospitalID, err := id.ParseHospitalID(strings.TrimSpace(*r.HospitalID))
		if err != nil {
			return in, dErrors.New(dErrors.CodeValidation, "hospital_id must be a valid id").WithDetails("field", "hospital_id")
		}
		in.HospitalID = &hospitalID
	}
	return in, nil
}

type LivesSavedRequest struct {
	LivesSaved int `json:"lives_saved"`
}

func (r *LivesSavedRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}
