// Package eligibility decides whether a donor may book another donation.
// It is pure: callers load the donor's history and pass it in.
package eligibility

import (
	"time"

	"lifeline/internal/donation/models"
	dErrors "lifeline/pkg/domain-errors"
)

// DeferralPeriod is the minimum time between two donations.
const DeferralPeriod = 90 * 24 * time.Hour

const dateLayout = "2006-01-02"

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonPendingSchedule  Reason = "has_pending_schedule"
	ReasonTooSoonSinceLast Reason = "too_soon_since_last_donation"
)

// Verdict is the outcome of Evaluate. LastDonation and NextEligible are set
// only for ReasonTooSoonSinceLast.
type Verdict struct {
	Eligible     bool
	Reason       Reason
	LastDonation *time.Time
	NextEligible *time.Time
}

// Evaluate applies the rules in order; the first failure wins.
//  1. an open (pending) schedule blocks a new one
//  2. the latest donation must be at least DeferralPeriod before now;
//     exactly DeferralPeriod is allowed
func Evaluate(schedules []*models.Schedule, records []*models.Record, now time.Time) Verdict {
	for _, s := range schedules {
		if s.IsPending() {
			return Verdict{Reason: ReasonPendingSchedule}
		}
	}

	var last *time.Time
	for _, r := range records {
		if last == nil || r.DonationDate.After(*last) {
			d := r.DonationDate
			last = &d
		}
	}
	if last != nil {
		next := last.Add(DeferralPeriod)
		if now.Before(next) {
			return Verdict{Reason: ReasonTooSoonSinceLast, LastDonation: last, NextEligible: &next}
		}
	}
	return Verdict{Eligible: true}
}

// Err is nil for an eligible verdict, otherwise a CodeValidation error whose
// details carry the reason and, when known, the relevant dates.
func (v Verdict) Err() error {
	switch v.Reason {
	case ReasonNone:
		return nil
	case ReasonPendingSchedule:
		return dErrors.New(dErrors.CodeValidation,
			"You already have a pending donation schedule. Please complete or cancel it before scheduling a new one.").
			WithDetails("reason", string(v.Reason))
	case ReasonTooSoonSinceLast:
		last := v.LastDonation.Format(dateLayout)
		next := v.NextEligible.Format(dateLayout)
		return dErrors.New(dErrors.CodeValidation,
			"You can only donate once every 3 months. Your last donation was on "+last+
				". You can schedule your next donation after "+next+".").
			WithDetails("reason", string(v.Reason)).
			WithDetails("last_donation_date", last).
			WithDetails("next_eligible_date", next)
	default:
		return dErrors.New(dErrors.CodeValidation, "not eligible to donate").WithDetails("reason", string(v.Reason))
	}
}
