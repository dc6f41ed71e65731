package domain

import (
	"github.com/google/uuid"

	dErrors "lifeline/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so that a donor id can never be passed
// where a hospital id is expected. Construct from external input with the
// matching Parse function; the zero value is the nil UUID and means "unset".
type (
	UserID         uuid.UUID
	DonorID        uuid.UUID
	HospitalID     uuid.UUID
	ScheduleID     uuid.UUID
	RecordID       uuid.UUID
	BloodRequestID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID parses an account id. Errors carry CodeInvalidInput.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func ParseDonorID(s string) (DonorID, error) {
	u, err := parseUUID(s, "donor ID")
	return DonorID(u), err
}

func ParseHospitalID(s string) (HospitalID, error) {
	u, err := parseUUID(s, "hospital ID")
	return HospitalID(u), err
}

func ParseScheduleID(s string) (ScheduleID, error) {
	u, err := parseUUID(s, "schedule ID")
	return ScheduleID(u), err
}

func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record ID")
	return RecordID(u), err
}

func ParseBloodRequestID(s string) (BloodRequestID, error) {
	u, err := parseUUID(s, "blood request ID")
	return BloodRequestID(u), err
}

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id DonorID) String() string        { return uuid.UUID(id).String() }
func (id HospitalID) String() string     { return uuid.UUID(id).String() }
func (id ScheduleID) String() string     { return uuid.UUID(id).String() }
func (id RecordID) String() string       { return uuid.UUID(id).String() }
func (id BloodRequestID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id DonorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id HospitalID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ScheduleID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id BloodRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
