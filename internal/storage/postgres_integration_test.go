//go:build integration

package storage_test

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

	authmodels "lifeline/internal/auth/models"
	donationmodels "lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	donorservice "lifeline/internal/donor/service"
	hospitalmodels "lifeline/internal/hospital/models"
	"lifeline/internal/storage"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *storage.Postgres
	ctx      context.Context
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = storage.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.now = time.Now().UTC().Truncate(time.Microsecond)
	err := s.postgres.TruncateTables(s.ctx, "blood_requests", "donation_records",
		"donation_schedules", "hospitals", "donors", "users")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newDonor(username string) *donormodels.Donor {
	user, err := authmodels.NewUser(id.UserID(uuid.New()), username, "", "Ada", "Obi", "hash", id.RoleDonor, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(s.ctx, user))
	donor := donormodels.NewDonor(id.DonorID(uuid.New()), user.ID, s.now)
	s.Require().NoError(s.store.CreateDonor(s.ctx, donor))
	return donor
}

func (s *PostgresStoreSuite) newHospital() *hospitalmodels.Hospital {
	h, err := hospitalmodels.NewHospital(id.HospitalID(uuid.New()), "General", "Abuja", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateHospital(s.ctx, h))
	return h
}

func (s *PostgresStoreSuite) TestUsernameUniqueIgnoresCase() {
	s.newDonor("Musa")
	dup, err := authmodels.NewUser(id.UserID(uuid.New()), "musa", "", "", "", "hash", id.RoleDonor, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateUser(s.ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestDonorRoundTripKeepsOptionalFields() {
	donor := s.newDonor("halima")
	age, weight := 30, 72.5
	donor.Age = &age
	donor.Weight = &weight
	donor.BloodType = id.BloodTypeABNeg
	s.Require().NoError(s.store.UpdateDonorProfile(s.ctx, donor))

	got, err := s.store.FindDonorByUserID(s.ctx, donor.UserID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Age)
	s.Equal(30, *got.Age)
	s.Require().NotNil(got.Weight)
	s.InDelta(72.5, *got.Weight, 0.001)
	s.Equal(id.BloodTypeABNeg, got.BloodType)
}

// TestConcurrentPendingSchedules verifies the partial unique index admits
// exactly one pending schedule per donor.
func (s *PostgresStoreSuite) TestConcurrentPendingSchedules() {
	donor := s.newDonor("concurrent")
	const goroutines = 20

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched, err := donationmodels.NewSchedule(id.ScheduleID(uuid.New()), donor.ID, nil, s.now, donationmodels.DonationTypeStation, s.now)
			if err != nil {
				return
			}
			err = s.store.CreateSchedule(s.ctx, sched)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestDuplicateDonorKeepsTxUsable() {
	donor := s.newDonor("twice")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		dup := donormodels.NewDonor(id.DonorID(uuid.New()), donor.UserID, s.now)
		s.Require().ErrorIs(s.store.CreateDonor(ctx, dup), sentinel.ErrAlreadyUsed)

		got, err := s.store.FindDonorByUserID(ctx, donor.UserID)
		s.Require().NoError(err)
		s.Equal(donor.ID, got.ID)
		return nil
	})
	s.Require().NoError(err)
}

// TestConcurrentFirstEnsure runs first-use profile creation for one user from
// many transactions at once; all of them must see the same profile.
func (s *PostgresStoreSuite) TestConcurrentFirstEnsure() {
	user, err := authmodels.NewUser(id.UserID(uuid.New()), "firstvisit", "", "", "", "hash", id.RoleDonor, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(s.ctx, user))
	donors := donorservice.New(s.store, s.store, s.store)
	const goroutines = 8

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		got   = make([]id.DonorID, goroutines)
		errs  = make([]error, goroutines)
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = s.store.RunInTx(s.ctx, func(ctx context.Context) error {
				donor, err := donors.Ensure(ctx, user.ID)
				if err != nil {
					return err
				}
				got[i] = donor.ID
				return nil
			})
		}()
	}
	close(start)
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		s.Require().NoError(errs[i])
		s.Equal(got[0], got[i])
	}
}

func (s *PostgresStoreSuite) TestLivesSavedCeiling() {
	donor := s.newDonor("ceiling")
	hospital := s.newHospital()

	s.Require().NoError(s.store.AddDonorLivesSaved(s.ctx, donor.ID, 10))
	s.ErrorIs(s.store.AddDonorLivesSaved(s.ctx, donor.ID, math.MaxInt32-9), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.AddDonorLivesSaved(s.ctx, id.DonorID(uuid.New()), 1), sentinel.ErrNotFound)
	s.Require().NoError(s.store.AddDonorLivesSaved(s.ctx, donor.ID, math.MaxInt32-10))

	s.Require().NoError(s.store.AddHospitalLivesSaved(s.ctx, hospital.ID, math.MaxInt32))
	s.ErrorIs(s.store.AddHospitalLivesSaved(s.ctx, hospital.ID, 1), sentinel.ErrInvalidState)

	got, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(math.MaxInt32, got.LivesSaved)
}

func (s *PostgresStoreSuite) TestRunInTxRollback() {
	donor := s.newDonor("rollback")
	hospital := s.newHospital()
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.IncrementDonorDonations(ctx, donor.ID, 1))
		s.Require().NoError(s.store.IncrementHospitalBlood(ctx, hospital.ID, 1))
		return boom
	})
	s.Require().ErrorIs(err, boom)

	got, err := s.store.FindDonorByID(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Zero(got.TotalDonations)
	gotHospital, err := s.store.FindHospitalByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Zero(gotHospital.TotalBloodReceived)
}

func (s *PostgresStoreSuite) TestDeleteHospitalSetsNull() {
	donor := s.newDonor("setnull")
	hospital := s.newHospital()
	sched, err := donationmodels.NewSchedule(id.ScheduleID(uuid.New()), donor.ID, &hospital.ID, s.now, donationmodels.DonationTypeHome, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, sched))
	rec, err := donationmodels.NewRecord(id.RecordID(uuid.New()), sched.ID, &hospital.ID, 1.25, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRecord(s.ctx, rec))

	s.Require().NoError(s.store.DeleteHospital(s.ctx, hospital.ID))

	gotSched, err := s.store.FindScheduleByID(s.ctx, sched.ID)
	s.Require().NoError(err)
	s.Nil(gotSched.PreferredHospitalID)
	gotRec, err := s.store.FindRecordByID(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Nil(gotRec.HospitalID)
	s.InDelta(1.25, gotRec.BloodAmount, 0.001)
}

func (s *PostgresStoreSuite) TestReconcileBatchUpdate() {
	a := s.newDonor("a")
	b := s.newDonor("b")
	hospital := s.newHospital()

	s.Require().NoError(s.store.SetDonorTotals(s.ctx, map[id.DonorID]int{a.ID: 4, b.ID: 2}))
	s.Require().NoError(s.store.SetHospitalBloodTotals(s.ctx, map[id.HospitalID]int{hospital.ID: 6}))

	rows, err := s.store.ListLeaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(a.ID, rows[0].DonorID)
	s.Equal(4, rows[0].TotalDonations)

	perDonor, err := s.store.CountRecordsPerDonor(s.ctx)
	s.Require().NoError(err)
	s.Zero(perDonor[a.ID])
	s.Contains(perDonor, b.ID)
}
