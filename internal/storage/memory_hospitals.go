package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"

	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

func cloneHospital(h *hospitalmodels.Hospital) *hospitalmodels.Hospital {
	c := *h
	return &c
}

func (m *Memory) CreateHospital(ctx context.Context, h *hospitalmodels.Hospital) error {
	defer m.lock(ctx)()
	if _, exists := m.hospitals[h.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	m.hospitals[h.ID] = cloneHospital(h)
	return nil
}

func (m *Memory) FindHospitalByID(ctx context.Context, hospitalID id.HospitalID) (*hospitalmodels.Hospital, error) {
	defer m.rlock(ctx)()
	h, ok := m.hospitals[hospitalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneHospital(h), nil
}

// ListHospitals orders by name.
func (m *Memory) ListHospitals(ctx context.Context) ([]*hospitalmodels.Hospital, error) {
	defer m.rlock(ctx)()
	out := make([]*hospitalmodels.Hospital, 0, len(m.hospitals))
	for _, h := range m.hospitals {
		out = append(out, cloneHospital(h))
	}
	slices.SortFunc(out, func(a, b *hospitalmodels.Hospital) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// UpdateHospitalDetails writes name and location only.
func (m *Memory) UpdateHospitalDetails(ctx context.Context, h *hospitalmodels.Hospital) error {
	return m.updateHospital(ctx, h.ID, func(cur *hospitalmodels.Hospital) error {
		cur.Name = h.Name
		cur.Location = h.Location
		cur.UpdatedAt = h.UpdatedAt
		return nil
	})
}

// DeleteHospital removes the hospital and clears references to it from
// schedules and records.
func (m *Memory) DeleteHospital(ctx context.Context, hospitalID id.HospitalID) error {
	defer m.lock(ctx)()
	if _, ok := m.hospitals[hospitalID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.hospitals, hospitalID)
	for sid, s := range m.schedules {
		if s.PreferredHospitalID != nil && *s.PreferredHospitalID == hospitalID {
			next := cloneSchedule(s)
			next.PreferredHospitalID = nil
			m.schedules[sid] = next
		}
	}
	for rid, r := range m.records {
		if r.HospitalID != nil && *r.HospitalID == hospitalID {
			next := cloneRecord(r)
			next.HospitalID = nil
			m.records[rid] = next
		}
	}
	return nil
}

func (m *Memory) updateHospital(ctx context.Context, hospitalID id.HospitalID, mutate func(*hospitalmodels.Hospital) error) error {
	defer m.lock(ctx)()
	current, ok := m.hospitals[hospitalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneHospital(current)
	if err := mutate(next); err != nil {
		return err
	}
	m.hospitals[hospitalID] = next
	return nil
}

func (m *Memory) IncrementHospitalBlood(ctx context.Context, hospitalID id.HospitalID, delta int) error {
	return m.updateHospital(ctx, hospitalID, func(h *hospitalmodels.Hospital) error {
		h.TotalBloodReceived += delta
		return nil
	})
}

func (m *Memory) AddHospitalLivesSaved(ctx context.Context, hospitalID id.HospitalID, n int) error {
	return m.updateHospital(ctx, hospitalID, func(h *hospitalmodels.Hospital) error {
		if exceedsCeiling(h.TotalLivesSaved, n) {
			return sentinel.ErrInvalidState
		}
		h.TotalLivesSaved += n
		return nil
	})
}

// SetHospitalBloodTotals overwrites total_blood_received for each hospital in totals.
func (m *Memory) SetHospitalBloodTotals(ctx context.Context, totals map[id.HospitalID]int) error {
	defer m.lock(ctx)()
	for hospitalID, total := range totals {
		current, ok := m.hospitals[hospitalID]
		if !ok {
			continue
		}
		next := cloneHospital(current)
		next.TotalBloodReceived = total
		m.hospitals[hospitalID] = next
	}
	return nil
}

func (m *Memory) CountHospitals(ctx context.Context) (int, error) {
	defer m.rlock(ctx)()
	return len(m.hospitals), nil
}
