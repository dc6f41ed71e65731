package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "lifeline/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events that change donation history or
	// account state. Emission is fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication and access events.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine board and catalogue activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// UserID is the account the event is about.
	UserID id.UserID
	// ActorID is who performed the action when different from UserID,
	// e.g. the admin finalizing a donor's schedule.
	ActorID   id.UserID
	Subject   string
	Action    string
	Reason    string
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	// Account events
	EventUserRegistered AuditEvent = "user_registered"
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"
	EventTokenRefreshed AuditEvent = "token_refreshed"
	EventLoggedOut      AuditEvent = "logged_out"

	// Donation events
	EventDonationScheduled  AuditEvent = "donation_scheduled"
	EventDonationFinalized  AuditEvent = "donation_finalized"
	EventScheduleCanceled   AuditEvent = "schedule_canceled"
	EventLivesSavedUpdated  AuditEvent = "lives_saved_updated"
	EventCountersReconciled AuditEvent = "counters_reconciled"

	// Hospital events
	EventHospitalCreated AuditEvent = "hospital_created"
	EventHospitalUpdated AuditEvent = "hospital_updated"
	EventHospitalDeleted AuditEvent = "hospital_deleted"

	// Blood request board events
	EventBloodRequestCreated   AuditEvent = "blood_request_created"
	EventBloodRequestFulfilled AuditEvent = "blood_request_fulfilled"
	EventBloodRequestDeleted   AuditEvent = "blood_request_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:     CategoryCompliance,
	EventDonationScheduled:  CategoryCompliance,
	EventDonationFinalized:  CategoryCompliance,
	EventScheduleCanceled:   CategoryCompliance,
	EventLivesSavedUpdated:  CategoryCompliance,
	EventCountersReconciled: CategoryCompliance,

	EventLoginSucceeded: CategorySecurity,
	EventLoginFailed:    CategorySecurity,
	EventTokenRefreshed: CategorySecurity,
	EventLoggedOut:      CategorySecurity,

	EventHospitalCreated:       CategoryOperations,
	EventHospitalUpdated:       CategoryOperations,
	EventHospitalDeleted:       CategoryOperations,
	EventBloodRequestCreated:   CategoryOperations,
	EventBloodRequestFulfilled: CategoryOperations,
	EventBloodRequestDeleted:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
