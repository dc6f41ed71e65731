package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lifeline/internal/bloodrequest/handler/mocks"
	"lifeline/internal/bloodrequest/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, svc
}

func TestCreateIgnoresClientControlledFields(t *testing.T) {
	router, svc := newRouter(t)
	caller := id.UserID(uuid.New())
	svc.EXPECT().Create(gomock.Any(), models.Draft{
		PatientName:      "Tunde",
		BloodType:        "AB+",
		HospitalName:     "City",
		HospitalLocation: "Abuja",
		ContactPhone:     "0800",
	}).Return(&models.BloodRequest{ID: id.BloodRequestID(uuid.New()), RequesterID: caller, BloodType: "AB+", Urgency: models.UrgencyNormal}, nil)

	req := testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, "/emergency-requests", map[string]any{
		"patient_name":      "Tunde",
		"blood_type":        "AB+",
		"hospital_name":     "City",
		"hospital_location": "Abuja",
		"contact_phone":     "0800",
		"is_fulfilled":      true,
		"requester":         uuid.NewString(),
	}), caller)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[BloodRequestResponse](t, rr)
	assert.False(t, resp.IsFulfilled)
	assert.Equal(t, caller.String(), resp.Requester)
	assert.Equal(t, "normal", resp.Urgency)
}

func TestCreateValidationError(t *testing.T) {
	router, svc := newRouter(t)
	svc.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeValidation, "patient_name is required").WithDetails("field", "patient_name"))

	req := testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodPost, "/emergency-requests", map[string]any{}), id.UserID(uuid.New()))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	assert.Equal(t, "patient_name", testutil.UnmarshalErrorResponse(t, rr)["field"])
}

func TestFulfillAndDelete(t *testing.T) {
	requestID := id.BloodRequestID(uuid.New())

	t.Run("fulfill", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Fulfill(gomock.Any(), requestID).Return(&models.BloodRequest{ID: requestID, IsFulfilled: true}, nil)
		rr := testutil.DoRequest(router, testutil.AsDonor(testutil.NewRequestWithBody(t, http.MethodPatch, "/emergency-requests/"+requestID.String()+"/fulfill", ""), id.UserID(uuid.New())))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.True(t, testutil.UnmarshalResponse[BloodRequestResponse](t, rr).IsFulfilled)
	})

	t.Run("delete by a stranger", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Delete(gomock.Any(), requestID).Return(dErrors.New(dErrors.CodeForbidden, "Only the requester or an admin can change this request"))
		rr := testutil.DoRequest(router, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodDelete, "/emergency-requests/"+requestID.String()+"/delete", nil), id.UserID(uuid.New())))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	t.Run("delete by the owner", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Delete(gomock.Any(), requestID).Return(nil)
		rr := testutil.DoRequest(router, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodDelete, "/emergency-requests/"+requestID.String()+"/delete", nil), id.UserID(uuid.New())))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})
}

func TestAdminList(t *testing.T) {
	t.Run("donors are forbidden", func(t *testing.T) {
		router, _ := newRouter(t)
		rr := testutil.DoRequest(router, testutil.AsDonor(testutil.NewJSONRequest(t, http.MethodGet, "/admin/emergency-requests", nil), id.UserID(uuid.New())))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("admins see every request", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().List(gomock.Any()).Return([]*models.BloodRequest{
			{ID: id.BloodRequestID(uuid.New())},
			{ID: id.BloodRequestID(uuid.New()), IsFulfilled: true},
		}, nil)
		rr := testutil.DoRequest(router, testutil.AsAdmin(testutil.NewJSONRequest(t, http.MethodGet, "/admin/emergency-requests", nil), id.UserID(uuid.New())))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[[]BloodRequestResponse](t, rr)
		require.Len(t, *resp, 2)
	})
}
