package handler

import (
	"time"

	"lifeline/internal/donation/eligibility"
	"lifeline/internal/donation/models"
	"lifeline/internal/donation/service"
	donorhandler "lifeline/internal/donor/handler"
	hospitalhandler "lifeline/internal/hospital/handler"
	hospitalmodels "lifeline/internal/hospital/models"
)

type HospitalRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RecordSummary struct {
	ID           string       `json:"id"`
	Hospital     *HospitalRef `json:"hospital"`
	DonationDate time.Time    `json:"donation_date"`
	BloodAmount  float64      `json:"blood_amount"`
}

type ScheduleResponse struct {
	ID                string                            `json:"id"`
	Donor             *donorhandler.ProfileResponse     `json:"donor"`
	PreferredHospital *hospitalhandler.HospitalResponse `json:"preferred_hospital"`
	ScheduledDate     time.Time                         `json:"scheduled_date"`
	DonationType      models.DonationType               `json:"donation_type"`
	Status            models.ScheduleStatus             `json:"status"`
	Record            *RecordSummary                    `json:"record"`
	CreatedAt         time.Time                         `json:"created_at"`
	UpdatedAt         time.Time                         `json:"updated_at"`
}

type RecordResponse struct {
	ID           string                            `json:"id"`
	ScheduleID   string                            `json:"schedule_id"`
	Hospital     *hospitalhandler.HospitalResponse `json:"hospital"`
	DonationDate time.Time                         `json:"donation_date"`
	BloodAmount  float64                           `json:"blood_amount"`
}

type EligibilityResponse struct {
	Eligible         bool    `json:"eligible"`
	Reason           string  `json:"reason,omitempty"`
	LastDonationDate *string `json:"last_donation_date"`
	NextEligibleDate *string `json:"next_eligible_date"`
}

type CertificateResponse struct {
	CertificateID    string    `json:"certificate_id"`
	DonorName        string    `json:"donor_name"`
	DonationDate     time.Time `json:"donation_date"`
	HospitalName     string    `json:"hospital_name"`
	HospitalLocation string    `json:"hospital_location"`
	BloodType        string    `json:"blood_type"`
	BloodAmount      float64   `json:"blood_amount"`
	IssueDate        time.Time `json:"issue_date"`
}

type ReconcileResponse struct {
	DonorsChecked     int `json:"donors_checked"`
	DonorsAdjusted    int `json:"donors_adjusted"`
	HospitalsChecked  int `json:"hospitals_checked"`
	HospitalsAdjusted int `json:"hospitals_adjusted"`
}

func toScheduleResponse(v *service.ScheduleView) ScheduleResponse {
	s := v.Schedule
	resp := ScheduleResponse{
		ID:            s.ID.String(),
		ScheduledDate: s.ScheduledAt,
		DonationType:  s.DonationType,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if v.Donor != nil {
		p := donorhandler.ToProfileResponse(v.Donor)
		resp.Donor = &p
	}
	if v.PreferredHospital != nil {
		h := hospitalhandler.ToHospitalResponse(v.PreferredHospital)
		resp.PreferredHospital = &h
	}
	if v.Record != nil {
		resp.Record = &RecordSummary{
			ID:           v.Record.ID.String(),
			Hospital:     hospitalRef(v.RecordHospital),
			DonationDate: v.Record.DonationDate,
			BloodAmount:  v.Record.BloodAmount,
		}
	}
	return resp
}

func toScheduleResponses(views []service.ScheduleView) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(views))
	for i := range views {
		out = append(out, toScheduleResponse(&views[i]))
	}
	return out
}

func hospitalRef(h *hospitalmodels.Hospital) *HospitalRef {
	if h == nil {
		return nil
	}
	return &HospitalRef{ID: h.ID.String(), Name: h.Name}
}

func toRecordResponse(v *service.RecordView) RecordResponse {
	resp := RecordResponse{
		ID:           v.Record.ID.String(),
		ScheduleID:   v.Record.ScheduleID.String(),
		DonationDate: v.Record.DonationDate,
		BloodAmount:  v.Record.BloodAmount,
	}
	if v.Hospital != nil {
		h := hospitalhandler.ToHospitalResponse(v.Hospital)
		resp.Hospital = &h
	}
	return resp
}

func toEligibilityResponse(v eligibility.Verdict) EligibilityResponse {
	resp := EligibilityResponse{Eligible: v.Eligible, Reason: string(v.Reason)}
	if v.LastDonation != nil {
		d := v.LastDonation.Format(time.DateOnly)
		resp.LastDonationDate = &d
	}
	if v.NextEligible != nil {
		d := v.NextEligible.Format(time.DateOnly)
		resp.NextEligibleDate = &d
	}
	return resp
}

func toCertificateResponse(c *models.Certificate) CertificateResponse {
	return CertificateResponse{
		CertificateID:    c.CertificateID,
		DonorName:        c.DonorName,
		DonationDate:     c.DonationDate,
		HospitalName:     c.HospitalName,
		HospitalLocation: c.HospitalLocation,
		BloodType:        c.BloodType.String(),
		BloodAmount:      c.BloodAmount,
		IssueDate:        c.IssueDate,
	}
}

func toReconcileResponse(r *models.ReconcileReport) ReconcileResponse {
	return ReconcileResponse{
		DonorsChecked:     r.DonorsChecked,
		DonorsAdjusted:    r.DonorsAdjusted,
		HospitalsChecked:  r.HospitalsChecked,
		HospitalsAdjusted: r.HospitalsAdjusted,
	}
}
