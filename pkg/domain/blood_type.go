package domain

import dErrors "lifeline/pkg/domain-errors"

// BloodType is an ABO/Rh group. BloodTypeUnknown ("None") is a valid stored
// value for donors who have not been typed yet.
type BloodType string

const (
	BloodTypeAPos    BloodType = "A+"
	BloodTypeANeg    BloodType = "A-"
	BloodTypeBPos    BloodType = "B+"
	BloodTypeBNeg    BloodType = "B-"
	BloodTypeABPos   BloodType = "AB+"
	BloodTypeABNeg   BloodType = "AB-"
	BloodTypeOPos    BloodType = "O+"
	BloodTypeONeg    BloodType = "O-"
	BloodTypeUnknown BloodType = "None"
)

var validBloodTypes = map[BloodType]bool{
	BloodTypeAPos:    true,
	BloodTypeANeg:    true,
	BloodTypeBPos:    true,
	BloodTypeBNeg:    true,
	BloodTypeABPos:   true,
	BloodTypeABNeg:   true,
	BloodTypeOPos:    true,
	BloodTypeONeg:    true,
	BloodTypeUnknown: true,
}

// ParseBloodType validates external input against the supported groups.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "blood type cannot be empty")
	}
	bt := BloodType(s)
	if !bt.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	return bt, nil
}

func (b BloodType) IsValid() bool {
	return validBloodTypes[b]
}

func (b BloodType) String() string {
	return string(b)
}
