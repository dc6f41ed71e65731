package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	authmodels "lifeline/internal/auth/models"
	"lifeline/internal/bloodrequest/models"
	"lifeline/internal/storage"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/audit/publisher"
	auditmemory "lifeline/pkg/platform/audit/store/memory"
	"lifeline/pkg/requestcontext"
)

type BloodRequestServiceSuite struct {
	suite.Suite
	store   *storage.Memory
	events  *auditmemory.InMemoryStore
	service *Service
	now     time.Time
	owner   id.UserID
}

func TestBloodRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(BloodRequestServiceSuite))
}

func (s *BloodRequestServiceSuite) SetupTest() {
	s.store = storage.NewMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.service = New(s.store, s.store, WithAuditPublisher(publisher.New(s.events)))
	s.now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	s.owner = s.newUser("owner", id.RoleDonor)
}

func (s *BloodRequestServiceSuite) newUser(username string, role id.Role) id.UserID {
	u, err := authmodels.NewUser(id.UserID(uuid.New()), username, "", "", "", "hash", role, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateUser(context.Background(), u))
	return u.ID
}

func (s *BloodRequestServiceSuite) ctx(userID id.UserID, role id.Role, at time.Time) context.Context {
	return requestcontext.WithTime(requestcontext.WithPrincipal(context.Background(), userID, role), at)
}

func draft() models.Draft {
	return models.Draft{
		PatientName:      "Tunde",
		BloodType:        "O-",
		HospitalName:     "City",
		HospitalLocation: "Ibadan",
		ContactPhone:     "+2348000000",
		Urgency:          "emergency",
	}
}

func (s *BloodRequestServiceSuite) post(at time.Time) *models.BloodRequest {
	r, err := s.service.Create(s.ctx(s.owner, id.RoleDonor, at), draft())
	s.Require().NoError(err)
	return r
}

func (s *BloodRequestServiceSuite) TestCreateSetsRequester() {
	r := s.post(s.now)

	s.Equal(s.owner, r.RequesterID)
	s.Equal("owner", r.RequesterName)
	s.False(r.IsFulfilled)
	s.Equal(models.UrgencyEmergency, r.Urgency)

	events, err := s.events.ListRecent(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal(string(audit.EventBloodRequestCreated), events[0].Action)
}

func (s *BloodRequestServiceSuite) TestCreateValidation() {
	tests := []struct {
		name  string
		edit  func(*models.Draft)
		field string
	}{
		{"missing patient", func(d *models.Draft) { d.PatientName = " " }, "patient_name"},
		{"bad blood type", func(d *models.Draft) { d.BloodType = "C+" }, "blood_type"},
		{"untyped blood", func(d *models.Draft) { d.BloodType = "None" }, "blood_type"},
		{"long phone", func(d *models.Draft) { d.ContactPhone = "123456789012345678901" }, "contact_phone"},
		{"bad urgency", func(d *models.Draft) { d.Urgency = "whenever" }, "urgency"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			d := draft()
			tt.edit(&d)
			_, err := s.service.Create(s.ctx(s.owner, id.RoleDonor, s.now), d)
			de, ok := dErrors.From(err)
			s.Require().True(ok)
			s.Equal(dErrors.CodeValidation, de.Code)
			s.Equal(tt.field, de.Details["field"])
		})
	}
}

func (s *BloodRequestServiceSuite) TestListOrdersOpenFirst() {
	oldest := s.post(s.now)
	middle := s.post(s.now.Add(time.Hour))
	newest := s.post(s.now.Add(2 * time.Hour))
	_, err := s.service.Fulfill(s.ctx(s.owner, id.RoleDonor, s.now), newest.ID)
	s.Require().NoError(err)

	list, err := s.service.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(middle.ID, list[0].ID)
	s.Equal(oldest.ID, list[1].ID)
	s.Equal(newest.ID, list[2].ID)
}

func (s *BloodRequestServiceSuite) TestFulfill() {
	r := s.post(s.now)
	stranger := s.newUser("stranger", id.RoleDonor)

	_, err := s.service.Fulfill(s.ctx(stranger, id.RoleDonor, s.now), r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	done, err := s.service.Fulfill(s.ctx(s.owner, id.RoleDonor, s.now), r.ID)
	s.Require().NoError(err)
	s.True(done.IsFulfilled)

	again, err := s.service.Fulfill(s.ctx(s.newUser("mod", id.RoleAdmin), id.RoleAdmin, s.now), r.ID)
	s.Require().NoError(err, "fulfilling twice succeeds")
	s.True(again.IsFulfilled)

	_, err = s.service.Fulfill(s.ctx(s.owner, id.RoleDonor, s.now), id.BloodRequestID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BloodRequestServiceSuite) TestDelete() {
	r := s.post(s.now)
	stranger := s.newUser("stranger", id.RoleDonor)

	err := s.service.Delete(s.ctx(stranger, id.RoleDonor, s.now), r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	admin := s.newUser("admin", id.RoleAdmin)
	s.Require().NoError(s.service.Delete(s.ctx(admin, id.RoleAdmin, s.now), r.ID))

	_, err = s.store.FindBloodRequestByID(context.Background(), r.ID)
	s.Error(err)
	err = s.service.Delete(s.ctx(admin, id.RoleAdmin, s.now), r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
