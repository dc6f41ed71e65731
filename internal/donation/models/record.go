package models

import (
	"math"
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// DefaultBloodAmount is one unit.
const DefaultBloodAmount = 1.0

// maxBloodAmount is the largest value NUMERIC(5,2) holds.
const maxBloodAmount = 999.99

// Record is the proof that a schedule was completed. Exactly one exists per
// done schedule.
type Record struct {
	ID           id.RecordID
	ScheduleID   id.ScheduleID
	HospitalID   *id.HospitalID
	DonationDate time.Time
	BloodAmount  float64
}

func NewRecord(recordID id.RecordID, scheduleID id.ScheduleID, hospitalID *id.HospitalID, amount float64, now time.Time) (*Record, error) {
	amount, err := NormalizeBloodAmount(amount)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:           recordID,
		ScheduleID:   scheduleID,
		HospitalID:   hospitalID,
		DonationDate: now,
		BloodAmount:  amount,
	}, nil
}

// NormalizeBloodAmount rounds to two decimals and enforces 0 < amount <= 999.99.
func NormalizeBloodAmount(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, dErrors.New(dErrors.CodeValidation, "blood_amount must be a number").WithDetails("field", "blood_amount")
	}
	amount = math.Round(amount*100) / 100
	if amount <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "blood_amount must be greater than 0").WithDetails("field", "blood_amount")
	}
	if amount > maxBloodAmount {
		return 0, dErrors.New(dErrors.CodeValidation, "blood_amount must be at most 999.99").WithDetails("field", "blood_amount")
	}
	return amount, nil
}

// Certificate is the printable proof of a completed donation.
type Certificate struct {
	CertificateID    string
	DonorName        string
	DonationDate     time.Time
	HospitalName     string
	HospitalLocation string
	BloodType        id.BloodType
	BloodAmount      float64
	IssueDate        time.Time
}

// ReconcileReport describes how many counters drifted from the records.
type ReconcileReport struct {
	DonorsChecked     int
	DonorsAdjusted    int
	HospitalsChecked  int
	HospitalsAdjusted int
}
