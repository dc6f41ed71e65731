package domain

import dErrors "lifeline/pkg/domain-errors"

// Role is the closed set of account roles.
// Invariant: only RoleDonor and RoleAdmin exist; construct via ParseRole.
type Role string

const (
	RoleDonor Role = "donor"
	RoleAdmin Role = "admin"
)

// Capability names an operation a route requires. Permission checks ask the
// role for a capability instead of comparing role strings.
type Capability string

const (
	CapManageProfile    Capability = "manage_profile"
	CapScheduleDonation Capability = "schedule_donation"
	CapFinalizeDonation Capability = "finalize_donation"
	CapCancelSchedule   Capability = "cancel_schedule"
	CapRecordLivesSaved Capability = "record_lives_saved"
	CapManageHospitals  Capability = "manage_hospitals"
	CapViewAdminData    Capability = "view_admin_data"
	CapViewAllSchedules Capability = "view_all_schedules"
	CapModerateRequests Capability = "moderate_requests"
	CapReconcile        Capability = "reconcile_counters"
)

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDonor:
		return RoleDonor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
}

// Can reports whether the role grants capability c.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin:
		switch c {
		case CapFinalizeDonation, CapCancelSchedule, CapRecordLivesSaved,
			CapManageHospitals, CapViewAdminData, CapViewAllSchedules,
			CapModerateRequests, CapReconcile:
			return true
		}
		return false
	case RoleDonor:
		switch c {
		case CapManageProfile, CapScheduleDonation:
			return true
		}
		return false
	default:
		return false
	}
}

func (r Role) IsValid() bool {
	return r == RoleDonor || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
