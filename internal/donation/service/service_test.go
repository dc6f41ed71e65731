package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks DonorCounters,HospitalCounters,AuditPublisher,LeaderboardInvalidator

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "lifeline/internal/auth/models"
	"lifeline/internal/donation/eligibility"
	"lifeline/internal/donation/models"
	"lifeline/internal/donation/service/mocks"
	donorservice "lifeline/internal/donor/service"
	hospitalmodels "lifeline/internal/hospital/models"
	"lifeline/internal/storage"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/audit/publisher"
	auditmemory "lifeline/pkg/platform/audit/store/memory"
	"lifeline/pkg/requestcontext"
)

type DonationServiceSuite struct {
	suite.Suite
	store   *storage.Memory
	donors  *donorservice.Service
	events  *auditmemory.InMemoryStore
	service *Service
	now     time.Time
	adminID id.UserID
}

func TestDonationServiceSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceSuite))
}

func (s *DonationServiceSuite) stores() Stores {
	return Stores{
		Schedules:        s.store,
		Records:          s.store,
		Donors:           s.store,
		DonorCounters:    s.store,
		Hospitals:        s.store,
		HospitalCounters: s.store,
		Users:            s.store,
		Tx:               s.store,
	}
}

func (s *DonationServiceSuite) SetupTest() {
	s.store = storage.NewMemory()
	s.donors = donorservice.New(s.store, s.store, s.store)
	s.events = auditmemory.NewInMemoryStore()
	s.service = New(s.stores(), s.donors, WithAuditPublisher(publisher.New(s.events)))
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.adminID = id.UserID(uuid.New())
}

func (s *DonationServiceSuite) donorCtx(userID id.UserID, at time.Time) context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), userID, id.RoleDonor)
	return requestcontext.WithTime(ctx, at)
}

func (s *DonationServiceSuite) adminCtx(at time.Time) context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), s.adminID, id.RoleAdmin)
	return requestcontext.WithTime(ctx, at)
}

func (s *DonationServiceSuite) newDonorUser(username, first, last string) id.UserID {
	user, err := authmodels.NewUser(id.UserID(uuid.New()), username, "", first, last, "hash", id.RoleDonor, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(context.Background(), user))
	return user.ID
}

func (s *DonationServiceSuite) newHospital(name string) *hospitalmodels.Hospital {
	h, err := hospitalmodels.NewHospital(id.HospitalID(uuid.New()), name, "Lagos", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateHospital(context.Background(), h))
	return h
}

func (s *DonationServiceSuite) schedule(userID id.UserID, at time.Time) *ScheduleView {
	view, err := s.service.Schedule(s.donorCtx(userID, at), userID, ScheduleInput{
		ScheduledAt:  at.Add(24 * time.Hour),
		DonationType: models.DonationTypeStation,
	})
	s.Require().NoError(err)
	return view
}

func (s *DonationServiceSuite) donorTotals(userID id.UserID) (int, int) {
	donor, err := s.store.FindDonorByUserID(context.Background(), userID)
	s.Require().NoError(err)
	return donor.TotalDonations, donor.LivesSaved
}

func (s *DonationServiceSuite) hospitalTotals(hospitalID id.HospitalID) (int, int) {
	h, err := s.store.FindHospitalByID(context.Background(), hospitalID)
	s.Require().NoError(err)
	return h.TotalBloodReceived, h.TotalLivesSaved
}

func reasonOf(err error) string {
	de, ok := dErrors.From(err)
	if !ok {
		return ""
	}
	return de.Details["reason"]
}

func (s *DonationServiceSuite) TestScheduleCreatesPendingSchedule() {
	userID := s.newDonorUser("ada", "Ada", "Obi")
	hospital := s.newHospital("City")

	view, err := s.service.Schedule(s.donorCtx(userID, s.now), userID, ScheduleInput{
		ScheduledAt:         s.now.Add(72 * time.Hour),
		DonationType:        models.DonationTypeHome,
		PreferredHospitalID: &hospital.ID,
	})

	s.Require().NoError(err)
	s.Equal(models.StatusPending, view.Schedule.Status)
	s.Nil(view.Record)
	s.Equal("ada", view.Donor.User.Username)
	s.Require().NotNil(view.PreferredHospital)
	s.Equal("City", view.PreferredHospital.Name)

	events, err := s.events.ListRecent(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(string(audit.EventDonationScheduled), events[0].Action)
}

func (s *DonationServiceSuite) TestSecondScheduleWhilePendingIsRejected() {
	userID := s.newDonorUser("bola", "", "")
	s.schedule(userID, s.now)

	_, err := s.service.Schedule(s.donorCtx(userID, s.now), userID, ScheduleInput{
		ScheduledAt:  s.now.Add(48 * time.Hour),
		DonationType: models.DonationTypeStation,
	})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(string(eligibility.ReasonPendingSchedule), reasonOf(err))

	schedules, err := s.store.ListAllSchedules(context.Background())
	s.Require().NoError(err)
	s.Len(schedules, 1)
}

func (s *DonationServiceSuite) TestScheduleUnknownHospital() {
	userID := s.newDonorUser("chidi", "", "")
	missing := id.HospitalID(uuid.New())

	_, err := s.service.Schedule(s.donorCtx(userID, s.now), userID, ScheduleInput{
		ScheduledAt:         s.now.Add(time.Hour),
		DonationType:        models.DonationTypeStation,
		PreferredHospitalID: &missing,
	})

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	schedules, err := s.store.ListAllSchedules(context.Background())
	s.Require().NoError(err)
	s.Empty(schedules)
}

func (s *DonationServiceSuite) TestConcurrentSchedulingAdmitsOne() {
	userID := s.newDonorUser("dayo", "", "")
	_, err := s.donors.Ensure(context.Background(), userID)
	s.Require().NoError(err)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Schedule(s.donorCtx(userID, s.now), userID, ScheduleInput{
				ScheduledAt:  s.now.Add(time.Hour),
				DonationType: models.DonationTypeStation,
			})
			if err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
}

func (s *DonationServiceSuite) TestDeferralWindow() {
	userID := s.newDonorUser("efe", "", "")
	first := s.schedule(userID, s.now)
	_, err := s.service.Finalize(s.adminCtx(s.now), first.Schedule.ID, FinalizeInput{})
	s.Require().NoError(err)

	s.Run("one second early is rejected with dates", func() {
		early := s.now.Add(eligibility.DeferralPeriod - time.Second)
		_, err := s.service.Schedule(s.donorCtx(userID, early), userID, ScheduleInput{
			ScheduledAt:  early.Add(time.Hour),
			DonationType: models.DonationTypeStation,
		})
		s.Require().Error(err)
		de, ok := dErrors.From(err)
		s.Require().True(ok)
		s.Equal(string(eligibility.ReasonTooSoonSinceLast), de.Details["reason"])
		s.Equal("2026-05-04", de.Details["last_donation_date"])
		s.Equal("2026-08-02", de.Details["next_eligible_date"])
	})

	s.Run("exactly ninety days later is accepted", func() {
		s.schedule(userID, s.now.Add(eligibility.DeferralPeriod))
	})
}

func (s *DonationServiceSuite) TestEligibility() {
	userID := s.newDonorUser("fola", "", "")

	verdict, err := s.service.Eligibility(s.donorCtx(userID, s.now), userID)
	s.Require().NoError(err)
	s.True(verdict.Eligible)

	s.schedule(userID, s.now)
	verdict, err = s.service.Eligibility(s.donorCtx(userID, s.now), userID)
	s.Require().NoError(err)
	s.False(verdict.Eligible)
	s.Equal(eligibility.ReasonPendingSchedule, verdict.Reason)
}

func (s *DonationServiceSuite) TestFinalize() {
	userID := s.newDonorUser("gbenga", "", "")
	hospital := s.newHospital("Mercy")
	sched := s.schedule(userID, s.now)
	amount := 1.256

	view, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID, BloodAmount: &amount})
	s.Require().NoError(err)
	s.Equal(models.StatusDone, view.Schedule.Status)
	s.Require().NotNil(view.Record)
	s.InDelta(1.26, view.Record.BloodAmount, 0.0001)
	s.Require().NotNil(view.RecordHospital)
	s.Equal("Mercy", view.RecordHospital.Name)

	total, _ := s.donorTotals(userID)
	s.Equal(1, total)
	blood, _ := s.hospitalTotals(hospital.ID)
	s.Equal(1, blood)

	events, err := s.events.ListRecent(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(string(audit.EventDonationFinalized), events[0].Action)
	s.Equal(userID, events[0].UserID)
	s.Equal(s.adminID, events[0].ActorID)

	s.Run("finalizing twice is a conflict with no side effects", func() {
		_, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		total, _ := s.donorTotals(userID)
		s.Equal(1, total)
		blood, _ := s.hospitalTotals(hospital.ID)
		s.Equal(1, blood)
		perDonor, err := s.store.CountRecordsPerDonor(context.Background())
		s.Require().NoError(err)
		s.Equal(1, perDonor[view.Schedule.DonorID])
	})
}

func (s *DonationServiceSuite) TestFinalizeValidation() {
	userID := s.newDonorUser("hauwa", "", "")
	sched := s.schedule(userID, s.now)

	s.Run("unknown schedule", func() {
		_, err := s.service.Finalize(s.adminCtx(s.now), id.ScheduleID(uuid.New()), FinalizeInput{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-positive blood amount", func() {
		zero := 0.0
		_, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{BloodAmount: &zero})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown hospital rolls everything back", func() {
		missing := id.HospitalID(uuid.New())
		_, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &missing})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		stored, err := s.store.FindScheduleByID(context.Background(), sched.Schedule.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		total, _ := s.donorTotals(userID)
		s.Zero(total)
	})
}

func (s *DonationServiceSuite) TestFinalizeFailurePartwayLeavesNoTrace() {
	ctrl := gomock.NewController(s.T())
	hospitalCounters := mocks.NewMockHospitalCounters(ctrl)
	hospitalCounters.EXPECT().IncrementHospitalBlood(gomock.Any(), gomock.Any(), 1).Return(errors.New("connection reset"))

	stores := s.stores()
	stores.HospitalCounters = hospitalCounters
	svc := New(stores, s.donors)

	userID := s.newDonorUser("ife", "", "")
	hospital := s.newHospital("General")
	sched := s.schedule(userID, s.now)

	_, err := svc.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	total, _ := s.donorTotals(userID)
	s.Zero(total)
	blood, _ := s.hospitalTotals(hospital.ID)
	s.Zero(blood)
	stored, err := s.store.FindScheduleByID(context.Background(), sched.Schedule.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)
	records, err := s.store.FindRecordsBySchedules(context.Background(), []id.ScheduleID{sched.Schedule.ID})
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *DonationServiceSuite) TestFinalizeInvalidatesLeaderboard() {
	ctrl := gomock.NewController(s.T())
	board := mocks.NewMockLeaderboardInvalidator(ctrl)
	board.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)
	svc := New(s.stores(), s.donors, WithLeaderboard(board))

	userID := s.newDonorUser("jide", "", "")
	sched := s.schedule(userID, s.now)

	_, err := svc.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{})
	s.Require().NoError(err)
}

func (s *DonationServiceSuite) TestCancel() {
	userID := s.newDonorUser("kemi", "", "")
	sched := s.schedule(userID, s.now)

	view, err := s.service.Cancel(s.adminCtx(s.now), sched.Schedule.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCanceled, view.Schedule.Status)

	_, err = s.service.Cancel(s.adminCtx(s.now), sched.Schedule.ID)
	s.Require().NoError(err, "canceling twice succeeds")

	s.Run("a canceled schedule can still be finalized", func() {
		view, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{})
		s.Require().NoError(err)
		s.Equal(models.StatusDone, view.Schedule.Status)
	})

	s.Run("a done schedule cannot be canceled", func() {
		_, err := s.service.Cancel(s.adminCtx(s.now), sched.Schedule.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		stored, err := s.store.FindScheduleByID(context.Background(), sched.Schedule.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDone, stored.Status)
	})
}

func (s *DonationServiceSuite) TestUpdateLivesSaved() {
	userID := s.newDonorUser("lola", "", "")
	hospital := s.newHospital("Unity")
	sched := s.schedule(userID, s.now)
	done, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().NoError(err)
	recordID := done.Record.ID

	for _, n := range []int{0, -3} {
		_, err := s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, n)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}
	_, lives := s.donorTotals(userID)
	s.Zero(lives)

	view, err := s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, 3)
	s.Require().NoError(err)
	s.Equal("Unity", view.Hospital.Name)
	_, err = s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, 2)
	s.Require().NoError(err)

	_, lives = s.donorTotals(userID)
	s.Equal(5, lives)
	_, hospitalLives := s.hospitalTotals(hospital.ID)
	s.Equal(5, hospitalLives)

	_, err = s.service.UpdateLivesSaved(s.adminCtx(s.now), id.RecordID(uuid.New()), 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DonationServiceSuite) TestUpdateLivesSavedRejectsOverflow() {
	userID := s.newDonorUser("kemi", "", "")
	hospital := s.newHospital("Crest")
	sched := s.schedule(userID, s.now)
	done, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().NoError(err)
	recordID := done.Record.ID

	s.Run("count wider than the counter column", func() {
		_, err := s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, math.MaxInt)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	_, err = s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, 5)
	s.Require().NoError(err)

	s.Run("increment that would pass the ceiling", func() {
		_, err := s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, math.MaxInt32-4)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, lives := s.donorTotals(userID)
		s.Equal(5, lives)
		_, hospitalLives := s.hospitalTotals(hospital.ID)
		s.Equal(5, hospitalLives)
	})

	s.Run("increment up to the ceiling", func() {
		_, err := s.service.UpdateLivesSaved(s.adminCtx(s.now), recordID, math.MaxInt32-5)
		s.Require().NoError(err)
		_, lives := s.donorTotals(userID)
		s.Equal(math.MaxInt32, lives)
	})
}

func (s *DonationServiceSuite) TestUpdateLivesSavedFailureRollsBackDonor() {
	ctrl := gomock.NewController(s.T())
	hospitalCounters := mocks.NewMockHospitalCounters(ctrl)
	hospitalCounters.EXPECT().IncrementHospitalBlood(gomock.Any(), gomock.Any(), 1).Return(nil)
	hospitalCounters.EXPECT().AddHospitalLivesSaved(gomock.Any(), gomock.Any(), 4).Return(errors.New("deadlock detected"))
	stores := s.stores()
	stores.HospitalCounters = hospitalCounters
	svc := New(stores, s.donors)

	userID := s.newDonorUser("musa", "", "")
	hospital := s.newHospital("Hope")
	sched := s.schedule(userID, s.now)
	done, err := svc.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().NoError(err)

	_, err = svc.UpdateLivesSaved(s.adminCtx(s.now), done.Record.ID, 4)
	s.Require().Error(err)
	_, lives := s.donorTotals(userID)
	s.Zero(lives)
}

func (s *DonationServiceSuite) TestReconcile() {
	userID := s.newDonorUser("ngozi", "", "")
	hospital := s.newHospital("Trinity")
	sched := s.schedule(userID, s.now)
	_, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().NoError(err)
	s.newDonorUser("obi", "", "")
	_, err = s.donors.Ensure(context.Background(), s.newDonorUser("pelumi", "", ""))
	s.Require().NoError(err)

	donor, err := s.store.FindDonorByUserID(context.Background(), userID)
	s.Require().NoError(err)
	s.Require().NoError(s.store.IncrementDonorDonations(context.Background(), donor.ID, 4))
	s.Require().NoError(s.store.IncrementHospitalBlood(context.Background(), hospital.ID, -1))

	report, err := s.service.Reconcile(s.adminCtx(s.now))
	s.Require().NoError(err)
	s.Equal(2, report.DonorsChecked)
	s.Equal(1, report.DonorsAdjusted)
	s.Equal(1, report.HospitalsChecked)
	s.Equal(1, report.HospitalsAdjusted)

	total, _ := s.donorTotals(userID)
	s.Equal(1, total)
	blood, _ := s.hospitalTotals(hospital.ID)
	s.Equal(1, blood)

	again, err := s.service.Reconcile(s.adminCtx(s.now))
	s.Require().NoError(err)
	s.Zero(again.DonorsAdjusted)
	s.Zero(again.HospitalsAdjusted)
}

func (s *DonationServiceSuite) TestCertificate() {
	userID := s.newDonorUser("queen", "Queen", "Ade")
	hospital := s.newHospital("Saint Mary")
	sched := s.schedule(userID, s.now)
	done, err := s.service.Finalize(s.adminCtx(s.now), sched.Schedule.ID, FinalizeInput{HospitalID: &hospital.ID})
	s.Require().NoError(err)

	issued := s.now.Add(48 * time.Hour)
	cert, err := s.service.Certificate(s.donorCtx(userID, issued), done.Record.ID)
	s.Require().NoError(err)
	s.Equal("Queen Ade", cert.DonorName)
	s.Equal("Saint Mary", cert.HospitalName)
	s.Equal(id.BloodType("N/A"), cert.BloodType)
	s.True(cert.IssueDate.Equal(issued))
	s.Len(cert.CertificateID, 11)

	other := s.newDonorUser("rita", "", "")
	_, err = s.service.Certificate(s.donorCtx(other, s.now), done.Record.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.Certificate(s.adminCtx(s.now), done.Record.ID)
	s.NoError(err)
}

func (s *DonationServiceSuite) TestListSchedules() {
	first := s.newDonorUser("sade", "", "")
	second := s.newDonorUser("tayo", "", "")
	s.schedule(first, s.now)
	s.schedule(second, s.now)

	own, err := s.service.ListSchedules(s.donorCtx(first, s.now))
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal("sade", own[0].Donor.User.Username)

	all, err := s.service.ListSchedules(s.adminCtx(s.now))
	s.Require().NoError(err)
	s.Len(all, 2)
	for _, v := range all {
		s.NotNil(v.Donor)
	}
}
