package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	authmodels "lifeline/internal/auth/models"
	donationmodels "lifeline/internal/donation/models"
	"lifeline/internal/donor/models"
	"lifeline/internal/storage"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/requestcontext"
)

type DonorServiceSuite struct {
	suite.Suite
	store   *storage.Memory
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestDonorServiceSuite(t *testing.T) {
	suite.Run(t, new(DonorServiceSuite))
}

func (s *DonorServiceSuite) SetupTest() {
	s.store = storage.NewMemory()
	s.service = New(s.store, s.store, s.store)
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *DonorServiceSuite) newUser(username string) *authmodels.User {
	user, err := authmodels.NewUser(id.UserID(uuid.New()), username, username+"@example.com", "Ada", "Obi", "hash", id.RoleDonor, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(s.ctx, user))
	return user
}

func (s *DonorServiceSuite) TestProfileIsCreatedOnFirstRead() {
	user := s.newUser("ada")

	first, err := s.service.Profile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.ID, first.Donor.UserID)
	s.Equal("ada", first.User.Username)
	s.Zero(first.Donor.TotalDonations)

	second, err := s.service.Profile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(first.Donor.ID, second.Donor.ID)
}

func (s *DonorServiceSuite) TestEnsureIsRaceFree() {
	user := s.newUser("bola")

	var wg sync.WaitGroup
	ids := make([]id.DonorID, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			donor, err := s.service.Ensure(s.ctx, user.ID)
			s.NoError(err)
			if donor != nil {
				ids[i] = donor.ID
			}
		}(i)
	}
	wg.Wait()

	for _, donorID := range ids {
		s.Equal(ids[0], donorID)
	}
}

func (s *DonorServiceSuite) TestEnsureUnknownUser() {
	_, err := s.service.Ensure(s.ctx, id.UserID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DonorServiceSuite) TestUpdateProfile() {
	user := s.newUser("chidi")
	age, weight, phone := 30, 72.5, "+2348000000"
	bt := id.BloodTypeOPos

	s.Run("valid partial update", func() {
		profile, err := s.service.UpdateProfile(s.ctx, user.ID, models.ProfileUpdate{
			Age: &age, Weight: &weight, Phone: &phone, BloodType: &bt,
		})
		s.Require().NoError(err)
		s.Equal(30, *profile.Donor.Age)
		s.InDelta(72.5, *profile.Donor.Weight, 0.001)
		s.Equal(id.BloodTypeOPos, profile.Donor.BloodType)
	})

	s.Run("weight at 50kg is rejected and nothing changes", func() {
		light := 50.0
		_, err := s.service.UpdateProfile(s.ctx, user.ID, models.ProfileUpdate{Weight: &light})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "Weight must be above 50kg")

		profile, err := s.service.Profile(s.ctx, user.ID)
		s.Require().NoError(err)
		s.InDelta(72.5, *profile.Donor.Weight, 0.001)
	})

	s.Run("counters survive a profile update", func() {
		profile, err := s.service.Profile(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Require().NoError(s.store.IncrementDonorDonations(s.ctx, profile.Donor.ID, 2))

		location := "Lagos"
		updated, err := s.service.UpdateProfile(s.ctx, user.ID, models.ProfileUpdate{Location: &location})
		s.Require().NoError(err)
		s.Equal(2, updated.Donor.TotalDonations)
		s.Equal("Lagos", updated.Donor.Location)
	})
}

func (s *DonorServiceSuite) TestDashboardCountsPendingSchedules() {
	user := s.newUser("dayo")
	donor, err := s.service.Ensure(s.ctx, user.ID)
	s.Require().NoError(err)

	schedule, err := donationmodels.NewSchedule(id.ScheduleID(uuid.New()), donor.ID, nil, s.now.Add(48*time.Hour), donationmodels.DonationTypeStation, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, schedule))

	dashboard, err := s.service.Dashboard(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(1, dashboard.PendingSchedules)
	s.Equal(donor.ID, dashboard.Profile.Donor.ID)
}
