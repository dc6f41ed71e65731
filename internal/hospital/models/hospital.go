package models

import (
	"strings"
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

const maxFieldLen = 255

// Hospital receives donations. The counters are maintained by finalization,
// the lives-saved update and reconciliation, never by catalogue edits.
type Hospital struct {
	ID                 id.HospitalID
	Name               string
	Location           string
	TotalBloodReceived int
	TotalLivesSaved    int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewHospital(hospitalID id.HospitalID, name, location string, now time.Time) (*Hospital, error) {
	h := &Hospital{ID: hospitalID, CreatedAt: now, UpdatedAt: now}
	if err := h.Rename(name, location, now); err != nil {
		return nil, err
	}
	return h, nil
}

// Rename replaces the catalogue fields after validating them.
func (h *Hospital) Rename(name, location string, now time.Time) error {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "hospital name is required").WithDetails("field", "name")
	}
	if len(name) > maxFieldLen {
		return dErrors.New(dErrors.CodeValidation, "hospital name must be 255 characters or less").WithDetails("field", "name")
	}
	if len(location) > maxFieldLen {
		return dErrors.New(dErrors.CodeValidation, "hospital location must be 255 characters or less").WithDetails("field", "location")
	}
	h.Name = name
	h.Location = location
	h.UpdatedAt = now
	return nil
}
