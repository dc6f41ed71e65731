package storage

import (
	"cmp"
	"context"
	"slices"

	donormodels "lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

func cloneDonor(d *donormodels.Donor) *donormodels.Donor {
	c := *d
	if d.Age != nil {
		age := *d.Age
		c.Age = &age
	}
	if d.Weight != nil {
		weight := *d.Weight
		c.Weight = &weight
	}
	return &c
}

// CreateDonor fails with sentinel.ErrAlreadyUsed when the user already has a
// profile.
func (m *Memory) CreateDonor(ctx context.Context, donor *donormodels.Donor) error {
	defer m.lock(ctx)()
	if _, ok := m.users[donor.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := m.donorByUser[donor.UserID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	m.donors[donor.ID] = cloneDonor(donor)
	m.donorByUser[donor.UserID] = donor.ID
	return nil
}

func (m *Memory) FindDonorByID(ctx context.Context, donorID id.DonorID) (*donormodels.Donor, error) {
	defer m.rlock(ctx)()
	d, ok := m.donors[donorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDonor(d), nil
}

func (m *Memory) FindDonorByUserID(ctx context.Context, userID id.UserID) (*donormodels.Donor, error) {
	defer m.rlock(ctx)()
	donorID, ok := m.donorByUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDonor(m.donors[donorID]), nil
}

// LockDonor is a no-op beyond an existence check: RunInTx already holds the
// store-wide write lock.
func (m *Memory) LockDonor(ctx context.Context, donorID id.DonorID) error {
	defer m.rlock(ctx)()
	if _, ok := m.donors[donorID]; !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

// UpdateDonorProfile writes the editable profile fields. Counters are kept.
func (m *Memory) UpdateDonorProfile(ctx context.Context, donor *donormodels.Donor) error {
	defer m.lock(ctx)()
	current, ok := m.donors[donor.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneDonor(donor)
	next.UserID = current.UserID
	next.TotalDonations = current.TotalDonations
	next.LivesSaved = current.LivesSaved
	next.CreatedAt = current.CreatedAt
	m.donors[donor.ID] = next
	return nil
}

func (m *Memory) updateDonor(ctx context.Context, donorID id.DonorID, mutate func(*donormodels.Donor) error) error {
	defer m.lock(ctx)()
	current, ok := m.donors[donorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneDonor(current)
	if err := mutate(next); err != nil {
		return err
	}
	m.donors[donorID] = next
	return nil
}

func (m *Memory) IncrementDonorDonations(ctx context.Context, donorID id.DonorID, delta int) error {
	return m.updateDonor(ctx, donorID, func(d *donormodels.Donor) error {
		d.TotalDonations += delta
		return nil
	})
}

func (m *Memory) AddDonorLivesSaved(ctx context.Context, donorID id.DonorID, n int) error {
	return m.updateDonor(ctx, donorID, func(d *donormodels.Donor) error {
		if exceedsCeiling(d.LivesSaved, n) {
			return sentinel.ErrInvalidState
		}
		d.LivesSaved += n
		return nil
	})
}

// SetDonorTotals overwrites total_donations for each donor in totals.
func (m *Memory) SetDonorTotals(ctx context.Context, totals map[id.DonorID]int) error {
	defer m.lock(ctx)()
	for donorID, total := range totals {
		current, ok := m.donors[donorID]
		if !ok {
			continue
		}
		next := cloneDonor(current)
		next.TotalDonations = total
		m.donors[donorID] = next
	}
	return nil
}

func (m *Memory) ListDonors(ctx context.Context) ([]*donormodels.Donor, error) {
	defer m.rlock(ctx)()
	out := make([]*donormodels.Donor, 0, len(m.donors))
	for _, d := range m.donors {
		out = append(out, cloneDonor(d))
	}
	slices.SortFunc(out, func(a, b *donormodels.Donor) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// ListDonorProfiles returns every donor with its account, newest first.
func (m *Memory) ListDonorProfiles(ctx context.Context) ([]donormodels.Profile, error) {
	defer m.rlock(ctx)()
	out := make([]donormodels.Profile, 0, len(m.donors))
	for _, d := range m.donors {
		u, ok := m.users[d.UserID]
		if !ok {
			continue
		}
		out = append(out, donormodels.Profile{Donor: cloneDonor(d), User: cloneUser(u)})
	}
	slices.SortFunc(out, func(a, b donormodels.Profile) int {
		return b.Donor.CreatedAt.Compare(a.Donor.CreatedAt)
	})
	return out, nil
}

// ListLeaderboard returns donors with at least one donation, best first,
// ties broken by earliest profile then id.
func (m *Memory) ListLeaderboard(ctx context.Context, limit int) ([]donormodels.LeaderboardRow, error) {
	defer m.rlock(ctx)()
	var rows []donormodels.LeaderboardRow
	for _, d := range m.donors {
		if d.TotalDonations <= 0 {
			continue
		}
		row := donormodels.LeaderboardRow{
			DonorID:        d.ID,
			BloodType:      d.BloodType,
			TotalDonations: d.TotalDonations,
			LivesSaved:     d.LivesSaved,
			CreatedAt:      d.CreatedAt,
		}
		if u, ok := m.users[d.UserID]; ok {
			row.Username = u.Username
			row.FirstName = u.FirstName
			row.LastName = u.LastName
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b donormodels.LeaderboardRow) int {
		if c := cmp.Compare(b.TotalDonations, a.TotalDonations); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.DonorID.String(), b.DonorID.String())
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *Memory) CountDonors(ctx context.Context) (int, error) {
	defer m.rlock(ctx)()
	return len(m.donors), nil
}

func (m *Memory) SumLivesSaved(ctx context.Context) (int, error) {
	defer m.rlock(ctx)()
	total := 0
	for _, d := range m.donors {
		total += d.LivesSaved
	}
	return total, nil
}
