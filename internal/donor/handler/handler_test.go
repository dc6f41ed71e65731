package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "lifeline/internal/auth/models"
	"lifeline/internal/donor/handler/mocks"
	"lifeline/internal/donor/models"
	"lifeline/internal/donor/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/testutil"
)

type DonorHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
}

func TestDonorHandlerSuite(t *testing.T) {
	suite.Run(t, new(DonorHandlerSuite))
}

func (s *DonorHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.userID = id.UserID(uuid.New())
}

func (s *DonorHandlerSuite) profile() *models.Profile {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.Profile{
		Donor: &models.Donor{ID: id.DonorID(uuid.New()), UserID: s.userID, TotalDonations: 3, LivesSaved: 4, CreatedAt: now, UpdatedAt: now},
		User:  &authmodels.User{ID: s.userID, Username: "ada", Role: id.RoleDonor},
	}
}

func (s *DonorHandlerSuite) TestProfile() {
	s.Run("donor sees own profile", func() {
		s.service.EXPECT().Profile(gomock.Any(), s.userID).Return(s.profile(), nil)
		req := testutil.AsDonor(testutil.NewJSONRequest(s.T(), http.MethodGet, "/donor/profile", nil), s.userID)

		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[ProfileResponse](s.T(), rr)
		s.Equal(3, resp.TotalDonations)
		s.Nil(resp.BloodType)
		s.Equal("ada", resp.User.Username)
	})

	s.Run("admin is forbidden", func() {
		req := testutil.AsAdmin(testutil.NewJSONRequest(s.T(), http.MethodGet, "/donor/profile", nil), s.userID)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *DonorHandlerSuite) TestUpdateProfile() {
	s.Run("parses blood type and forwards only given fields", func() {
		s.service.EXPECT().UpdateProfile(gomock.Any(), s.userID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, u models.ProfileUpdate) (*models.Profile, error) {
				s.Require().NotNil(u.BloodType)
				s.Equal(id.BloodTypeABNeg, *u.BloodType)
				s.Require().NotNil(u.Age)
				s.Equal(40, *u.Age)
				s.Nil(u.Weight)
				return s.profile(), nil
			})
		req := testutil.AsDonor(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/donor/profile/update",
			map[string]any{"blood_type": "AB-", "age": 40}), s.userID)

		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("light donor is rejected before the service", func() {
		req := testutil.AsDonor(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/donor/profile/update",
			map[string]any{"weight": 49.5}), s.userID)

		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("weight", body["field"])
		s.Equal("Weight must be above 50kg to be eligible for blood donation.", body["error_description"])
	})

	s.Run("unknown blood type", func() {
		req := testutil.AsDonor(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/donor/profile/update",
			map[string]any{"blood_type": "Z+"}), s.userID)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *DonorHandlerSuite) TestDashboard() {
	s.service.EXPECT().Dashboard(gomock.Any(), s.userID).Return(&service.Dashboard{Profile: s.profile(), PendingSchedules: 1}, nil)
	req := testutil.AsDonor(testutil.NewJSONRequest(s.T(), http.MethodGet, "/donor/dashboard", nil), s.userID)

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[DashboardResponse](s.T(), rr)
	s.Equal(1, resp.PendingSchedules)
	s.Equal(4, resp.Donor.LivesSaved)
}
