package storage

import (
	"context"
	"maps"
	"sync"

	authmodels "lifeline/internal/auth/models"
	brmodels "lifeline/internal/bloodrequest/models"
	donationmodels "lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// Memory is an in-process store. Stored values are never mutated in place:
// writes replace the map entry with a fresh copy, so a transaction can roll
// back by restoring shallow copies of the maps.
type Memory struct {
	mu sync.RWMutex
	tables
}

type tables struct {
	users            map[id.UserID]*authmodels.User
	usernames        map[string]id.UserID
	donors           map[id.DonorID]*donormodels.Donor
	donorByUser      map[id.UserID]id.DonorID
	hospitals        map[id.HospitalID]*hospitalmodels.Hospital
	schedules        map[id.ScheduleID]*donationmodels.Schedule
	records          map[id.RecordID]*donationmodels.Record
	recordBySchedule map[id.ScheduleID]id.RecordID
	requests         map[id.BloodRequestID]*brmodels.BloodRequest
}

func NewMemory() *Memory {
	return &Memory{tables: tables{
		users:            make(map[id.UserID]*authmodels.User),
		usernames:        make(map[string]id.UserID),
		donors:           make(map[id.DonorID]*donormodels.Donor),
		donorByUser:      make(map[id.UserID]id.DonorID),
		hospitals:        make(map[id.HospitalID]*hospitalmodels.Hospital),
		schedules:        make(map[id.ScheduleID]*donationmodels.Schedule),
		records:          make(map[id.RecordID]*donationmodels.Record),
		recordBySchedule: make(map[id.ScheduleID]id.RecordID),
		requests:         make(map[id.BloodRequestID]*brmodels.BloodRequest),
	}}
}

func (t tables) snapshot() tables {
	return tables{
		users:            maps.Clone(t.users),
		usernames:        maps.Clone(t.usernames),
		donors:           maps.Clone(t.donors),
		donorByUser:      maps.Clone(t.donorByUser),
		hospitals:        maps.Clone(t.hospitals),
		schedules:        maps.Clone(t.schedules),
		records:          maps.Clone(t.records),
		recordBySchedule: maps.Clone(t.recordBySchedule),
		requests:         maps.Clone(t.requests),
	}
}

type memTxKey struct{}

// RunInTx holds the write lock for the whole callback. Store calls made with
// the callback's context skip locking; on error every table is restored to
// its state before the callback ran.
func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if m.inTx(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.tables.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, m)); err != nil {
		m.tables = saved
		return err
	}
	return nil
}

func (m *Memory) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(memTxKey{}).(*Memory)
	return ok && owner == m
}

func (m *Memory) rlock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

func (m *Memory) lock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}
