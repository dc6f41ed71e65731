package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "lifeline/internal/auth/models"
	"lifeline/internal/donation/eligibility"
	"lifeline/internal/donation/metrics"
	"lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

var tracer = otel.Tracer("lifeline/internal/donation")

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s *models.Schedule) error
	FindScheduleByID(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error)
	FindScheduleForUpdate(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error)
	UpdateScheduleStatus(ctx context.Context, s *models.Schedule) error
	ListSchedulesByDonor(ctx context.Context, donorID id.DonorID) ([]*models.Schedule, error)
	ListAllSchedules(ctx context.Context) ([]*models.Schedule, error)
}

type RecordStore interface {
	CreateRecord(ctx context.Context, r *models.Record) error
	FindRecordByID(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	FindRecordForUpdate(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	FindRecordsBySchedules(ctx context.Context, scheduleIDs []id.ScheduleID) (map[id.ScheduleID]*models.Record, error)
	ListRecordsByDonor(ctx context.Context, donorID id.DonorID) ([]*models.Record, error)
	CountRecordsPerDonor(ctx context.Context) (map[id.DonorID]int, error)
	CountRecordsPerHospital(ctx context.Context) (map[id.HospitalID]int, error)
}

type DonorStore interface {
	FindDonorByID(ctx context.Context, donorID id.DonorID) (*donormodels.Donor, error)
	LockDonor(ctx context.Context, donorID id.DonorID) error
	ListDonors(ctx context.Context) ([]*donormodels.Donor, error)
	ListDonorProfiles(ctx context.Context) ([]donormodels.Profile, error)
}

// DonorCounters is the only way donor aggregates change.
type DonorCounters interface {
	IncrementDonorDonations(ctx context.Context, donorID id.DonorID, delta int) error
	AddDonorLivesSaved(ctx context.Context, donorID id.DonorID, n int) error
	SetDonorTotals(ctx context.Context, totals map[id.DonorID]int) error
}

type HospitalStore interface {
	FindHospitalByID(ctx context.Context, hospitalID id.HospitalID) (*hospitalmodels.Hospital, error)
	ListHospitals(ctx context.Context) ([]*hospitalmodels.Hospital, error)
}

// HospitalCounters is the only way hospital aggregates change.
type HospitalCounters interface {
	IncrementHospitalBlood(ctx context.Context, hospitalID id.HospitalID, delta int) error
	AddHospitalLivesSaved(ctx context.Context, hospitalID id.HospitalID, n int) error
	SetHospitalBloodTotals(ctx context.Context, totals map[id.HospitalID]int) error
}

type UserStore interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

// DonorResolver returns the caller's donor profile, creating it if needed.
type DonorResolver interface {
	Ensure(ctx context.Context, userID id.UserID) (*donormodels.Donor, error)
}

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LeaderboardInvalidator drops cached rankings after counters change.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Stores groups the persistence ports. A single storage implementation
// usually satisfies all of them.
type Stores struct {
	Schedules        ScheduleStore
	Records          RecordStore
	Donors           DonorStore
	DonorCounters    DonorCounters
	Hospitals        HospitalStore
	HospitalCounters HospitalCounters
	Users            UserStore
	Tx               StoreTx
}

type ScheduleInput struct {
	ScheduledAt         time.Time
	DonationType        models.DonationType
	PreferredHospitalID *id.HospitalID
}

// FinalizeInput: a nil BloodAmount means DefaultBloodAmount.
type FinalizeInput struct {
	HospitalID  *id.HospitalID
	BloodAmount *float64
}

// ScheduleView is a schedule with everything the API renders next to it.
// Record is nil until the schedule is finalized.
type ScheduleView struct {
	Schedule          *models.Schedule
	Donor             *donormodels.Profile
	PreferredHospital *hospitalmodels.Hospital
	Record            *models.Record
	RecordHospital    *hospitalmodels.Hospital
}

type RecordView struct {
	Record   *models.Record
	Hospital *hospitalmodels.Hospital
}

// Service runs the donation workflows.
type Service struct {
	schedules        ScheduleStore
	records          RecordStore
	donors           DonorStore
	donorCounters    DonorCounters
	hospitals        HospitalStore
	hospitalCounters HospitalCounters
	users            UserStore
	tx               StoreTx
	resolver         DonorResolver
	logger           *slog.Logger
	auditPublisher   AuditPublisher
	leaderboard      LeaderboardInvalidator
	metrics          *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithLeaderboard(l LeaderboardInvalidator) Option {
	return func(s *Service) {
		s.leaderboard = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(stores Stores, resolver DonorResolver, opts ...Option) *Service {
	s := &Service{
		schedules:        stores.Schedules,
		records:          stores.Records,
		donors:           stores.Donors,
		donorCounters:    stores.DonorCounters,
		hospitals:        stores.Hospitals,
		hospitalCounters: stores.HospitalCounters,
		users:            stores.Users,
		tx:               stores.Tx,
		resolver:         resolver,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligibility reports whether the caller could book a donation now.
func (s *Service) Eligibility(ctx context.Context, userID id.UserID) (eligibility.Verdict, error) {
	donor, err := s.resolver.Ensure(ctx, userID)
	if err != nil {
		return eligibility.Verdict{}, err
	}
	return s.evaluate(ctx, donor.ID)
}

func (s *Service) evaluate(ctx context.Context, donorID id.DonorID) (eligibility.Verdict, error) {
	schedules, err := s.schedules.ListSchedulesByDonor(ctx, donorID)
	if err != nil {
		return eligibility.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schedules")
	}
	records, err := s.records.ListRecordsByDonor(ctx, donorID)
	if err != nil {
		return eligibility.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation records")
	}
	return eligibility.Evaluate(schedules, records, requestcontext.Now(ctx)), nil
}

// Schedule books a donation for the caller. The donor row is locked for the
// whole check-then-insert so two concurrent requests cannot both pass the
// eligibility rules.
func (s *Service) Schedule(ctx context.Context, userID id.UserID, in ScheduleInput) (_ *ScheduleView, err error) {
	ctx, span := tracer.Start(ctx, "donation.Schedule")
	defer func() { endSpan(span, err) }()

	var created *models.Schedule
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		donor, err := s.resolver.Ensure(txCtx, userID)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String("donor_id", donor.ID.String()))
		if err := s.donors.LockDonor(txCtx, donor.ID); err != nil {
			return translate(err, "donor not found", "failed to lock donor")
		}

		verdict, err := s.evaluate(txCtx, donor.ID)
		if err != nil {
			return err
		}
		if !verdict.Eligible {
			s.metrics.IncrementEligibilityRejected(string(verdict.Reason))
			return verdict.Err()
		}

		if in.PreferredHospitalID != nil {
			if _, err := s.hospitals.FindHospitalByID(txCtx, *in.PreferredHospitalID); err != nil {
				return translate(err, "hospital not found", "failed to load hospital")
			}
		}

		now := requestcontext.Now(txCtx)
		schedule, err := models.NewSchedule(id.ScheduleID(uuid.New()), donor.ID, in.PreferredHospitalID, in.ScheduledAt, in.DonationType, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "invalid schedule")
		}
		if err := s.schedules.CreateSchedule(txCtx, schedule); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return eligibility.Verdict{Reason: eligibility.ReasonPendingSchedule}.Err()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create schedule")
		}
		created = schedule
		return s.emit(txCtx, audit.Event{
			UserID:  userID,
			Subject: schedule.ID.String(),
			Action:  string(audit.EventDonationScheduled),
			Reason:  string(schedule.DonationType),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementScheduled()
	s.logger.InfoContext(ctx, "donation scheduled",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"schedule_id", created.ID,
	)
	return s.view(ctx, created)
}

// Finalize closes out a schedule: it marks it done, writes the donation
// record and bumps the donor and hospital counters, all or nothing.
// Canceled schedules may be finalized; done ones may not.
func (s *Service) Finalize(ctx context.Context, scheduleID id.ScheduleID, in FinalizeInput) (_ *ScheduleView, err error) {
	ctx, span := tracer.Start(ctx, "donation.Finalize",
		trace.WithAttributes(attribute.String("schedule_id", scheduleID.String())))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	amount := models.DefaultBloodAmount
	if in.BloodAmount != nil {
		amount = *in.BloodAmount
	}
	amount, err = models.NormalizeBloodAmount(amount)
	if err != nil {
		return nil, err
	}

	var finalized *models.Schedule
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		schedule, err := s.schedules.FindScheduleForUpdate(txCtx, scheduleID)
		if err != nil {
			return translate(err, "schedule not found", "failed to load schedule")
		}
		if err := schedule.CanFinalize(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "Schedule already marked as done")
		}

		var hospital *hospitalmodels.Hospital
		if in.HospitalID != nil {
			hospital, err = s.hospitals.FindHospitalByID(txCtx, *in.HospitalID)
			if err != nil {
				return translate(err, "hospital not found", "failed to load hospital")
			}
		}

		now := requestcontext.Now(txCtx)
		schedule.ApplyDone(now)
		if err := s.schedules.UpdateScheduleStatus(txCtx, schedule); err != nil {
			return translate(err, "schedule not found", "failed to update schedule")
		}

		record, err := models.NewRecord(id.RecordID(uuid.New()), schedule.ID, in.HospitalID, amount, now)
		if err != nil {
			return err
		}
		if err := s.records.CreateRecord(txCtx, record); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "Schedule already marked as done")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donation record")
		}

		if err := s.donorCounters.IncrementDonorDonations(txCtx, schedule.DonorID, 1); err != nil {
			return translate(err, "donor not found", "failed to update donor totals")
		}
		if hospital != nil {
			if err := s.hospitalCounters.IncrementHospitalBlood(txCtx, hospital.ID, 1); err != nil {
				return translate(err, "hospital not found", "failed to update hospital totals")
			}
		}

		donor, err := s.donors.FindDonorByID(txCtx, schedule.DonorID)
		if err != nil {
			return translate(err, "donor not found", "failed to load donor")
		}
		finalized = schedule
		return s.emit(txCtx, audit.Event{
			UserID:  donor.UserID,
			ActorID: requestcontext.UserID(txCtx),
			Subject: schedule.ID.String(),
			Action:  string(audit.EventDonationFinalized),
			Reason:  record.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementFinalized(amount)
	s.metrics.ObserveFinalizeDuration(time.Since(start).Seconds())
	s.invalidateLeaderboard(ctx)
	s.logger.InfoContext(ctx, "donation finalized",
		"request_id", requestcontext.RequestID(ctx),
		"schedule_id", scheduleID,
		"actor_id", requestcontext.UserID(ctx),
	)
	return s.view(ctx, finalized)
}

// Cancel marks a schedule canceled. Canceling twice is a no-op success;
// canceling a completed donation is a conflict.
func (s *Service) Cancel(ctx context.Context, scheduleID id.ScheduleID) (_ *ScheduleView, err error) {
	ctx, span := tracer.Start(ctx, "donation.Cancel",
		trace.WithAttributes(attribute.String("schedule_id", scheduleID.String())))
	defer func() { endSpan(span, err) }()

	var canceled *models.Schedule
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		schedule, err := s.schedules.FindScheduleForUpdate(txCtx, scheduleID)
		if err != nil {
			return translate(err, "schedule not found", "failed to load schedule")
		}
		if err := schedule.CanCancel(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "Cannot cancel a completed donation")
		}
		schedule.ApplyCancel(requestcontext.Now(txCtx))
		if err := s.schedules.UpdateScheduleStatus(txCtx, schedule); err != nil {
			return translate(err, "schedule not found", "failed to update schedule")
		}
		canceled = schedule
		return s.emit(txCtx, audit.Event{
			ActorID: requestcontext.UserID(txCtx),
			Subject: schedule.ID.String(),
			Action:  string(audit.EventScheduleCanceled),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementCanceled()
	return s.view(ctx, canceled)
}

// UpdateLivesSaved credits n lives to the record's donor and, when the
// record names one, its hospital. Repeated calls add again.
func (s *Service) UpdateLivesSaved(ctx context.Context, recordID id.RecordID, n int) (_ *RecordView, err error) {
	ctx, span := tracer.Start(ctx, "donation.UpdateLivesSaved",
		trace.WithAttributes(attribute.String("record_id", recordID.String()), attribute.Int("lives_saved", n)))
	defer func() { endSpan(span, err) }()

	if n <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Lives saved must be greater than 0").WithDetails("field", "lives_saved")
	}
	if n > math.MaxInt32 {
		return nil, dErrors.New(dErrors.CodeValidation, "Lives saved is too large").WithDetails("field", "lives_saved")
	}

	var record *models.Record
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.records.FindRecordForUpdate(txCtx, recordID)
		if err != nil {
			return translate(err, "donation record not found", "failed to load donation record")
		}
		schedule, err := s.schedules.FindScheduleByID(txCtx, record.ScheduleID)
		if err != nil {
			return translate(err, "schedule not found", "failed to load schedule")
		}
		if err := s.donorCounters.AddDonorLivesSaved(txCtx, schedule.DonorID, n); err != nil {
			return translateCounter(err, "donor not found", "failed to update donor lives saved")
		}
		if record.HospitalID != nil {
			if err := s.hospitalCounters.AddHospitalLivesSaved(txCtx, *record.HospitalID, n); err != nil {
				return translateCounter(err, "hospital not found", "failed to update hospital lives saved")
			}
		}
		return s.emit(txCtx, audit.Event{
			ActorID: requestcontext.UserID(txCtx),
			Subject: record.ID.String(),
			Action:  string(audit.EventLivesSavedUpdated),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddLivesSaved(n)
	s.invalidateLeaderboard(ctx)
	view := &RecordView{Record: record}
	if record.HospitalID != nil {
		if h, err := s.hospitals.FindHospitalByID(ctx, *record.HospitalID); err == nil {
			view.Hospital = h
		}
	}
	return view, nil
}

// Reconcile recomputes donor and hospital donation totals from the records
// and corrects any drift.
func (s *Service) Reconcile(ctx context.Context) (_ *models.ReconcileReport, err error) {
	ctx, span := tracer.Start(ctx, "donation.Reconcile")
	defer func() { endSpan(span, err) }()

	report := &models.ReconcileReport{}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		*report = models.ReconcileReport{}

		perDonor, err := s.records.CountRecordsPerDonor(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count donor records")
		}
		donors, err := s.donors.ListDonors(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
		}
		donorFix := make(map[id.DonorID]int)
		for _, d := range donors {
			report.DonorsChecked++
			if want := perDonor[d.ID]; d.TotalDonations != want {
				donorFix[d.ID] = want
			}
		}
		if len(donorFix) > 0 {
			if err := s.donorCounters.SetDonorTotals(txCtx, donorFix); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to correct donor totals")
			}
		}
		report.DonorsAdjusted = len(donorFix)

		perHospital, err := s.records.CountRecordsPerHospital(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count hospital records")
		}
		hospitals, err := s.hospitals.ListHospitals(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list hospitals")
		}
		hospitalFix := make(map[id.HospitalID]int)
		for _, h := range hospitals {
			report.HospitalsChecked++
			if want := perHospital[h.ID]; h.TotalBloodReceived != want {
				hospitalFix[h.ID] = want
			}
		}
		if len(hospitalFix) > 0 {
			if err := s.hospitalCounters.SetHospitalBloodTotals(txCtx, hospitalFix); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to correct hospital totals")
			}
		}
		report.HospitalsAdjusted = len(hospitalFix)

		return s.emit(txCtx, audit.Event{
			ActorID: requestcontext.UserID(txCtx),
			Subject: "counters",
			Action:  string(audit.EventCountersReconciled),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddReconciled("donors", report.DonorsAdjusted)
	s.metrics.AddReconciled("hospitals", report.HospitalsAdjusted)
	if report.DonorsAdjusted > 0 {
		s.invalidateLeaderboard(ctx)
	}
	s.logger.InfoContext(ctx, "counters reconciled",
		"request_id", requestcontext.RequestID(ctx),
		"donors_adjusted", report.DonorsAdjusted,
		"hospitals_adjusted", report.HospitalsAdjusted,
	)
	return report, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, event)
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate leaderboard cache",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

// translateCounter is translate for capped counters, which refuse an
// increment that would overflow.
func translateCounter(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrInvalidState) {
		return dErrors.New(dErrors.CodeValidation, "Lives saved total would exceed the maximum").
			WithDetails("field", "lives_saved")
	}
	return translate(err, notFound, internal)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
