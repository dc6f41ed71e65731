package service

import (
	"context"
	"errors"
	"strings"

	"lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/sentinel"
	"lifeline/pkg/requestcontext"
)

// ListSchedules returns every schedule for callers allowed to see them all,
// otherwise only the caller's own.
func (s *Service) ListSchedules(ctx context.Context) ([]ScheduleView, error) {
	userID, role := requestcontext.UserID(ctx), requestcontext.Role(ctx)

	if role.Can(id.CapViewAllSchedules) {
		schedules, err := s.schedules.ListAllSchedules(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
		}
		profiles, err := s.donors.ListDonorProfiles(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
		}
		byDonor := make(map[id.DonorID]*donormodels.Profile, len(profiles))
		for i := range profiles {
			byDonor[profiles[i].Donor.ID] = &profiles[i]
		}
		return s.views(ctx, schedules, byDonor)
	}

	if !role.Can(id.CapScheduleDonation) {
		return []ScheduleView{}, nil
	}
	donor, err := s.resolver.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, donor)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListSchedulesByDonor(ctx, donor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	return s.views(ctx, schedules, map[id.DonorID]*donormodels.Profile{donor.ID: profile})
}

// Certificate builds the printable proof for a record. Donors may only
// fetch their own.
func (s *Service) Certificate(ctx context.Context, recordID id.RecordID) (*models.Certificate, error) {
	record, err := s.records.FindRecordByID(ctx, recordID)
	if err != nil {
		return nil, translate(err, "donation record not found", "failed to load donation record")
	}
	schedule, err := s.schedules.FindScheduleByID(ctx, record.ScheduleID)
	if err != nil {
		return nil, translate(err, "schedule not found", "failed to load schedule")
	}
	donor, err := s.donors.FindDonorByID(ctx, schedule.DonorID)
	if err != nil {
		return nil, translate(err, "donor not found", "failed to load donor")
	}
	if !requestcontext.Role(ctx).Can(id.CapViewAllSchedules) && donor.UserID != requestcontext.UserID(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only access your own donation certificates.")
	}
	user, err := s.users.FindUserByID(ctx, donor.UserID)
	if err != nil {
		return nil, translate(err, "user not found", "failed to load user")
	}

	cert := &models.Certificate{
		CertificateID:    certificateID(record.ID),
		DonorName:        user.DisplayName(),
		DonationDate:     record.DonationDate,
		HospitalName:     "N/A",
		HospitalLocation: "N/A",
		BloodType:        donor.BloodType,
		BloodAmount:      record.BloodAmount,
		IssueDate:        requestcontext.Now(ctx),
	}
	if cert.BloodType == "" {
		cert.BloodType = "N/A"
	}
	if record.HospitalID != nil {
		h, err := s.hospitals.FindHospitalByID(ctx, *record.HospitalID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load hospital")
		}
		if h != nil {
			cert.HospitalName = h.Name
			cert.HospitalLocation = h.Location
		}
	}
	return cert, nil
}

// certificateID is stable per record: LL- followed by the first eight hex
// digits of the record id.
func certificateID(recordID id.RecordID) string {
	return "LL-" + strings.ToUpper(strings.ReplaceAll(recordID.String(), "-", "")[:8])
}

func (s *Service) view(ctx context.Context, schedule *models.Schedule) (*ScheduleView, error) {
	donor, err := s.donors.FindDonorByID(ctx, schedule.DonorID)
	if err != nil {
		return nil, translate(err, "donor not found", "failed to load donor")
	}
	profile, err := s.profile(ctx, donor)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []*models.Schedule{schedule}, map[id.DonorID]*donormodels.Profile{donor.ID: profile})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) profile(ctx context.Context, donor *donormodels.Donor) (*donormodels.Profile, error) {
	user, err := s.users.FindUserByID(ctx, donor.UserID)
	if err != nil {
		return nil, translate(err, "user not found", "failed to load user")
	}
	return &donormodels.Profile{Donor: donor, User: user}, nil
}

func (s *Service) views(ctx context.Context, schedules []*models.Schedule, profiles map[id.DonorID]*donormodels.Profile) ([]ScheduleView, error) {
	out := make([]ScheduleView, 0, len(schedules))
	if len(schedules) == 0 {
		return out, nil
	}

	ids := make([]id.ScheduleID, len(schedules))
	for i, sc := range schedules {
		ids[i] = sc.ID
	}
	records, err := s.records.FindRecordsBySchedules(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation records")
	}
	hospitals, err := s.hospitals.ListHospitals(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list hospitals")
	}
	byID := make(map[id.HospitalID]*hospitalmodels.Hospital, len(hospitals))
	for _, h := range hospitals {
		byID[h.ID] = h
	}
	lookup := func(hid *id.HospitalID) *hospitalmodels.Hospital {
		if hid == nil {
			return nil
		}
		return byID[*hid]
	}

	for _, sc := range schedules {
		v := ScheduleView{
			Schedule:          sc,
			Donor:             profiles[sc.DonorID],
			PreferredHospital: lookup(sc.PreferredHospitalID),
		}
		if r, ok := records[sc.ID]; ok {
			v.Record = r
			v.RecordHospital = lookup(r.HospitalID)
		}
		out = append(out, v)
	}
	return out, nil
}
