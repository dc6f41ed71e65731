package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	authmodels "lifeline/internal/auth/models"
	brmodels "lifeline/internal/bloodrequest/models"
	donationmodels "lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newDonor(username string, created time.Time) *donormodels.Donor {
	user, err := authmodels.NewUser(id.UserID(uuid.New()), username, username+"@example.com", "", "", "hash", id.RoleDonor, created)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(s.ctx, user))
	donor := donormodels.NewDonor(id.DonorID(uuid.New()), user.ID, created)
	s.Require().NoError(s.store.CreateDonor(s.ctx, donor))
	return donor
}

func (s *MemoryStoreSuite) newHospital(name string) *hospitalmodels.Hospital {
	h, err := hospitalmodels.NewHospital(id.HospitalID(uuid.New()), name, "Lagos", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateHospital(s.ctx, h))
	return h
}

func (s *MemoryStoreSuite) newSchedule(donorID id.DonorID, hospitalID *id.HospitalID) *donationmodels.Schedule {
	sched, err := donationmodels.NewSchedule(id.ScheduleID(uuid.New()), donorID, hospitalID, s.now.Add(24*time.Hour), donationmodels.DonationTypeStation, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, sched))
	return sched
}

func (s *MemoryStoreSuite) TestUsers() {
	s.Run("username is unique regardless of case", func() {
		s.newDonor("Amaka", s.now)
		dup, err := authmodels.NewUser(id.UserID(uuid.New()), "AMAKA", "", "", "", "hash", id.RoleDonor, s.now)
		s.Require().NoError(err)
		s.ErrorIs(s.store.CreateUser(s.ctx, dup), sentinel.ErrAlreadyUsed)

		found, err := s.store.FindUserByUsername(s.ctx, "amaka")
		s.Require().NoError(err)
		s.Equal("Amaka", found.Username)
	})

	s.Run("unknown user is not found", func() {
		_, err := s.store.FindUserByID(s.ctx, id.UserID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestDonorProfileIsolation() {
	donor := s.newDonor("tunde", s.now)

	s.Run("second profile for the same user is rejected", func() {
		again := donormodels.NewDonor(id.DonorID(uuid.New()), donor.UserID, s.now)
		s.ErrorIs(s.store.CreateDonor(s.ctx, again), sentinel.ErrAlreadyUsed)
	})

	s.Run("profile update keeps counters", func() {
		s.Require().NoError(s.store.IncrementDonorDonations(s.ctx, donor.ID, 2))
		donor.Phone = "0800"
		donor.TotalDonations = 99
		s.Require().NoError(s.store.UpdateDonorProfile(s.ctx, donor))

		found, err := s.store.FindDonorByID(s.ctx, donor.ID)
		s.Require().NoError(err)
		s.Equal("0800", found.Phone)
		s.Equal(2, found.TotalDonations)
	})

	s.Run("returned values do not alias stored ones", func() {
		found, err := s.store.FindDonorByUserID(s.ctx, donor.UserID)
		s.Require().NoError(err)
		found.LivesSaved = 500

		again, err := s.store.FindDonorByID(s.ctx, donor.ID)
		s.Require().NoError(err)
		s.Zero(again.LivesSaved)
	})
}

func (s *MemoryStoreSuite) TestLivesSavedCeiling() {
	donor := s.newDonor("ceiling", s.now)
	hospital := s.newHospital("Summit")

	s.Require().NoError(s.store.AddDonorLivesSaved(s.ctx, donor.ID, 10))
	s.ErrorIs(s.store.AddDonorLivesSaved(s.ctx, donor.ID, math.MaxInt32-9), sentinel.ErrInvalidState)
	s.Require().NoError(s.store.AddDonorLivesSaved(s.ctx, donor.ID, math.MaxInt32-10))

	s.Require().NoError(s.store.AddHospitalLivesSaved(s.ctx, hospital.ID, math.MaxInt32))
	s.ErrorIs(s.store.AddHospitalLivesSaved(s.ctx, hospital.ID, 1), sentinel.ErrInvalidState)

	got, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(math.MaxInt32, got.LivesSaved)
	h, err := s.store.FindHospitalByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Equal(math.MaxInt32, h.TotalLivesSaved)
}

func (s *MemoryStoreSuite) TestOnePendingSchedulePerDonor() {
	donor := s.newDonor("ngozi", s.now)
	first := s.newSchedule(donor.ID, nil)

	second, err := donationmodels.NewSchedule(id.ScheduleID(uuid.New()), donor.ID, nil, s.now, donationmodels.DonationTypeHome, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateSchedule(s.ctx, second), sentinel.ErrAlreadyUsed)

	first.ApplyCancel(s.now)
	s.Require().NoError(s.store.UpdateScheduleStatus(s.ctx, first))
	s.NoError(s.store.CreateSchedule(s.ctx, second))
}

func (s *MemoryStoreSuite) TestOneRecordPerSchedule() {
	donor := s.newDonor("femi", s.now)
	sched := s.newSchedule(donor.ID, nil)

	rec, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, nil, 1, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRecord(s.ctx, rec))

	dup, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, nil, 1, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateRecord(s.ctx, dup), sentinel.ErrAlreadyUsed)

	bySchedule, err := s.store.FindRecordsBySchedules(s.ctx, []id.ScheduleID{sched.ID, id.ScheduleID(uuid.New())})
	s.Require().NoError(err)
	s.Len(bySchedule, 1)
	s.Equal(rec.ID, bySchedule[sched.ID].ID)
}

func (s *MemoryStoreSuite) TestRunInTxRollsBackEveryWrite() {
	donor := s.newDonor("kemi", s.now)
	hospital := s.newHospital("General")
	sched := s.newSchedule(donor.ID, &hospital.ID)
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		sched.ApplyDone(s.now)
		s.Require().NoError(s.store.UpdateScheduleStatus(ctx, sched))
		rec, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, &hospital.ID, 1, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.CreateRecord(ctx, rec))
		s.Require().NoError(s.store.IncrementDonorDonations(ctx, donor.ID, 1))
		s.Require().NoError(s.store.IncrementHospitalBlood(ctx, hospital.ID, 1))
		return boom
	})
	s.Require().ErrorIs(err, boom)

	gotSched, err := s.store.FindScheduleByID(s.ctx, sched.ID)
	s.Require().NoError(err)
	s.Equal(donationmodels.StatusPending, gotSched.Status)
	gotDonor, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Zero(gotDonor.TotalDonations)
	gotHospital, err := s.store.FindHospitalByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Zero(gotHospital.TotalBloodReceived)
	records, err := s.store.ListRecordsByDonor(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *MemoryStoreSuite) TestRunInTxNestedJoinsOuter() {
	donor := s.newDonor("bola", s.now)
	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(inner context.Context) error {
			return s.store.IncrementDonorDonations(inner, donor.ID, 1)
		})
	})
	s.Require().NoError(err)
	got, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(1, got.TotalDonations)
}

func (s *MemoryStoreSuite) TestDeleteHospitalClearsReferences() {
	donor := s.newDonor("chidi", s.now)
	hospital := s.newHospital("St. Mary")
	sched := s.newSchedule(donor.ID, &hospital.ID)
	rec, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, &hospital.ID, 1, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRecord(s.ctx, rec))

	s.Require().NoError(s.store.DeleteHospital(s.ctx, hospital.ID))

	gotSched, err := s.store.FindScheduleByID(s.ctx, sched.ID)
	s.Require().NoError(err)
	s.Nil(gotSched.PreferredHospitalID)
	gotRec, err := s.store.FindRecordByID(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Nil(gotRec.HospitalID)
	s.ErrorIs(s.store.DeleteHospital(s.ctx, hospital.ID), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLeaderboardOrdering() {
	early := s.newDonor("early", s.now.Add(-2*time.Hour))
	late := s.newDonor("late", s.now.Add(-time.Hour))
	top := s.newDonor("top", s.now)
	none := s.newDonor("none", s.now)
	s.Require().NoError(s.store.IncrementDonorDonations(s.ctx, late.ID, 3))
	s.Require().NoError(s.store.IncrementDonorDonations(s.ctx, early.ID, 3))
	s.Require().NoError(s.store.IncrementDonorDonations(s.ctx, top.ID, 5))

	rows, err := s.store.ListLeaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal(top.ID, rows[0].DonorID)
	s.Equal(early.ID, rows[1].DonorID)
	s.Equal(late.ID, rows[2].DonorID)
	for _, r := range rows {
		s.NotEqual(none.ID, r.DonorID)
	}

	limited, err := s.store.ListLeaderboard(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *MemoryStoreSuite) TestReconcileCounts() {
	donor := s.newDonor("ada", s.now)
	hospital := s.newHospital("Central")
	sched := s.newSchedule(donor.ID, &hospital.ID)
	rec, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, &hospital.ID, 2.5, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRecord(s.ctx, rec))
	idle := s.newDonor("idle", s.now)

	perDonor, err := s.store.CountRecordsPerDonor(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, perDonor[donor.ID])
	s.Contains(perDonor, idle.ID)
	s.Zero(perDonor[idle.ID])

	perHospital, err := s.store.CountRecordsPerHospital(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, perHospital[hospital.ID])

	total, err := s.store.SumBloodAmount(s.ctx)
	s.Require().NoError(err)
	s.InDelta(2.5, total, 0.001)

	s.Require().NoError(s.store.SetDonorTotals(s.ctx, map[id.DonorID]int{donor.ID: 7}))
	got, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(7, got.TotalDonations)
}

func (s *MemoryStoreSuite) TestBloodRequestBoardOrder() {
	donor := s.newDonor("requester", s.now)
	mk := func(patient string, created time.Time) *brmodels.BloodRequest {
		r, err := brmodels.NewBloodRequest(id.BloodRequestID(uuid.New()), donor.UserID, brmodels.Draft{
			PatientName: patient, BloodType: "O-", HospitalName: "H", HospitalLocation: "L", ContactPhone: "1",
		}, created)
		s.Require().NoError(err)
		s.Require().NoError(s.store.CreateBloodRequest(s.ctx, r))
		return r
	}
	older := mk("older", s.now.Add(-time.Hour))
	newer := mk("newer", s.now)
	s.Require().NoError(s.store.MarkBloodRequestFulfilled(s.ctx, newer.ID))

	list, err := s.store.ListBloodRequests(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(older.ID, list[0].ID)
	s.Equal("requester", list[0].RequesterName)
	s.True(list[1].IsFulfilled)

	s.Require().NoError(s.store.DeleteBloodRequest(s.ctx, older.ID))
	_, err = s.store.FindBloodRequestByID(s.ctx, older.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
