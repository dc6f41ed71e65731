package storage

import (
	"cmp"
	"context"
	"slices"

	donationmodels "lifeline/internal/donation/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

func cloneSchedule(s *donationmodels.Schedule) *donationmodels.Schedule {
	c := *s
	if s.PreferredHospitalID != nil {
		h := *s.PreferredHospitalID
		c.PreferredHospitalID = &h
	}
	return &c
}

func cloneRecord(r *donationmodels.Record) *donationmodels.Record {
	c := *r
	if r.HospitalID != nil {
		h := *r.HospitalID
		c.HospitalID = &h
	}
	return &c
}

func sortSchedules(out []*donationmodels.Schedule) {
	slices.SortFunc(out, func(a, b *donationmodels.Schedule) int {
		if c := b.ScheduledAt.Compare(a.ScheduledAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// CreateSchedule fails with sentinel.ErrAlreadyUsed when the donor already
// has a pending schedule.
func (m *Memory) CreateSchedule(ctx context.Context, s *donationmodels.Schedule) error {
	defer m.lock(ctx)()
	if _, ok := m.donors[s.DonorID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.IsPending() {
		for _, existing := range m.schedules {
			if existing.DonorID == s.DonorID && existing.IsPending() {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	m.schedules[s.ID] = cloneSchedule(s)
	return nil
}

func (m *Memory) FindScheduleByID(ctx context.Context, scheduleID id.ScheduleID) (*donationmodels.Schedule, error) {
	defer m.rlock(ctx)()
	s, ok := m.schedules[scheduleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneSchedule(s), nil
}

// FindScheduleForUpdate is FindScheduleByID; RunInTx provides the exclusion.
func (m *Memory) FindScheduleForUpdate(ctx context.Context, scheduleID id.ScheduleID) (*donationmodels.Schedule, error) {
	return m.FindScheduleByID(ctx, scheduleID)
}

func (m *Memory) UpdateScheduleStatus(ctx context.Context, s *donationmodels.Schedule) error {
	defer m.lock(ctx)()
	current, ok := m.schedules[s.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneSchedule(current)
	next.Status = s.Status
	next.UpdatedAt = s.UpdatedAt
	m.schedules[s.ID] = next
	return nil
}

// ListSchedulesByDonor orders by scheduled date, latest first.
func (m *Memory) ListSchedulesByDonor(ctx context.Context, donorID id.DonorID) ([]*donationmodels.Schedule, error) {
	defer m.rlock(ctx)()
	var out []*donationmodels.Schedule
	for _, s := range m.schedules {
		if s.DonorID == donorID {
			out = append(out, cloneSchedule(s))
		}
	}
	sortSchedules(out)
	return out, nil
}

func (m *Memory) ListAllSchedules(ctx context.Context) ([]*donationmodels.Schedule, error) {
	defer m.rlock(ctx)()
	out := make([]*donationmodels.Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, cloneSchedule(s))
	}
	sortSchedules(out)
	return out, nil
}

func (m *Memory) CountSchedulesByStatus(ctx context.Context, status donationmodels.ScheduleStatus) (int, error) {
	defer m.rlock(ctx)()
	n := 0
	for _, s := range m.schedules {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

// CreateRecord fails with sentinel.ErrAlreadyUsed when the schedule already
// has a record.
func (m *Memory) CreateRecord(ctx context.Context, r *donationmodels.Record) error {
	defer m.lock(ctx)()
	if _, ok := m.schedules[r.ScheduleID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := m.recordBySchedule[r.ScheduleID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	m.records[r.ID] = cloneRecord(r)
	m.recordBySchedule[r.ScheduleID] = r.ID
	return nil
}

func (m *Memory) FindRecordByID(ctx context.Context, recordID id.RecordID) (*donationmodels.Record, error) {
	defer m.rlock(ctx)()
	r, ok := m.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(r), nil
}

// FindRecordForUpdate is FindRecordByID; RunInTx provides the exclusion.
func (m *Memory) FindRecordForUpdate(ctx context.Context, recordID id.RecordID) (*donationmodels.Record, error) {
	return m.FindRecordByID(ctx, recordID)
}

// FindRecordsBySchedules maps each schedule that has a record to it.
func (m *Memory) FindRecordsBySchedules(ctx context.Context, scheduleIDs []id.ScheduleID) (map[id.ScheduleID]*donationmodels.Record, error) {
	defer m.rlock(ctx)()
	out := make(map[id.ScheduleID]*donationmodels.Record, len(scheduleIDs))
	for _, sid := range scheduleIDs {
		if rid, ok := m.recordBySchedule[sid]; ok {
			out[sid] = cloneRecord(m.records[rid])
		}
	}
	return out, nil
}

// ListRecordsByDonor returns the donor's records, latest donation first.
func (m *Memory) ListRecordsByDonor(ctx context.Context, donorID id.DonorID) ([]*donationmodels.Record, error) {
	defer m.rlock(ctx)()
	var out []*donationmodels.Record
	for _, r := range m.records {
		if s, ok := m.schedules[r.ScheduleID]; ok && s.DonorID == donorID {
			out = append(out, cloneRecord(r))
		}
	}
	slices.SortFunc(out, func(a, b *donationmodels.Record) int {
		return b.DonationDate.Compare(a.DonationDate)
	})
	return out, nil
}

func (m *Memory) SumBloodAmount(ctx context.Context) (float64, error) {
	defer m.rlock(ctx)()
	total := 0.0
	for _, r := range m.records {
		total += r.BloodAmount
	}
	return total, nil
}

// CountRecordsPerDonor counts records for every donor, including zeros.
func (m *Memory) CountRecordsPerDonor(ctx context.Context) (map[id.DonorID]int, error) {
	defer m.rlock(ctx)()
	out := make(map[id.DonorID]int, len(m.donors))
	for donorID := range m.donors {
		out[donorID] = 0
	}
	for _, r := range m.records {
		if s, ok := m.schedules[r.ScheduleID]; ok {
			out[s.DonorID]++
		}
	}
	return out, nil
}

// CountRecordsPerHospital counts records for every hospital, including zeros.
func (m *Memory) CountRecordsPerHospital(ctx context.Context) (map[id.HospitalID]int, error) {
	defer m.rlock(ctx)()
	out := make(map[id.HospitalID]int, len(m.hospitals))
	for hospitalID := range m.hospitals {
		out[hospitalID] = 0
	}
	for _, r := range m.records {
		if r.HospitalID != nil {
			if _, ok := m.hospitals[*r.HospitalID]; ok {
				out[*r.HospitalID]++
			}
		}
	}
	return out, nil
}
