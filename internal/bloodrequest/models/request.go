package models

import (
	"strings"
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// ParseUrgency defaults an empty value to normal.
func ParseUrgency(s string) (Urgency, error) {
	switch Urgency(s) {
	case "":
		return UrgencyNormal, nil
	case UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
		return Urgency(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "urgency must be normal, urgent or emergency").WithDetails("field", "urgency")
	}
}

// BloodRequest is a public plea for a blood type. Fulfillment is one-way.
type BloodRequest struct {
	ID               id.BloodRequestID
	RequesterID      id.UserID
	RequesterName    string
	PatientName      string
	BloodType        id.BloodType
	HospitalName     string
	HospitalLocation string
	ContactPhone     string
	Urgency          Urgency
	Reason           string
	IsFulfilled      bool
	CreatedAt        time.Time
}

// Draft is the caller-supplied part of a request.
type Draft struct {
	PatientName      string
	BloodType        string
	HospitalName     string
	HospitalLocation string
	ContactPhone     string
	Urgency          string
	Reason           string
}

// NewBloodRequest validates a draft. The requester and fulfillment flag are
// never taken from the draft.
func NewBloodRequest(requestID id.BloodRequestID, requester id.UserID, d Draft, now time.Time) (*BloodRequest, error) {
	required := []struct {
		field string
		value *string
		max   int
	}{
		{"patient_name", &d.PatientName, 255},
		{"hospital_name", &d.HospitalName, 255},
		{"hospital_location", &d.HospitalLocation, 255},
		{"contact_phone", &d.ContactPhone, 20},
	}
	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			return nil, dErrors.New(dErrors.CodeValidation, r.field+" is required").WithDetails("field", r.field)
		}
		if len(*r.value) > r.max {
			return nil, dErrors.New(dErrors.CodeValidation, r.field+" is too long").WithDetails("field", r.field)
		}
	}

	bloodType, err := id.ParseBloodType(strings.TrimSpace(d.BloodType))
	if err != nil || bloodType == id.BloodTypeUnknown {
		return nil, dErrors.New(dErrors.CodeValidation, "blood_type must be one of A+, A-, B+, B-, AB+, AB-, O+, O-").
			WithDetails("field", "blood_type")
	}
	urgency, err := ParseUrgency(strings.TrimSpace(d.Urgency))
	if err != nil {
		return nil, err
	}

	return &BloodRequest{
		ID:               requestID,
		RequesterID:      requester,
		PatientName:      d.PatientName,
		BloodType:        bloodType,
		HospitalName:     d.HospitalName,
		HospitalLocation: d.HospitalLocation,
		ContactPhone:     d.ContactPhone,
		Urgency:          urgency,
		Reason:           strings.TrimSpace(d.Reason),
		IsFulfilled:      false,
		CreatedAt:        now,
	}, nil
}

// CanManage reports whether the caller may fulfill or delete the request.
func (b *BloodRequest) CanManage(caller id.UserID, role id.Role) bool {
	return caller == b.RequesterID || role.Can(id.CapModerateRequests)
}

// MarkFulfilled is idempotent.
func (b *BloodRequest) MarkFulfilled() {
	b.IsFulfilled = true
}
