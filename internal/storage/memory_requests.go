package storage

import (
	"cmp"
	"context"
	"slices"

	brmodels "lifeline/internal/bloodrequest/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

func cloneRequest(r *brmodels.BloodRequest) *brmodels.BloodRequest {
	c := *r
	return &c
}

func (m *Memory) withRequester(r *brmodels.BloodRequest) *brmodels.BloodRequest {
	c := cloneRequest(r)
	if u, ok := m.users[r.RequesterID]; ok {
		c.RequesterName = u.Username
	}
	return c
}

func (m *Memory) CreateBloodRequest(ctx context.Context, r *brmodels.BloodRequest) error {
	defer m.lock(ctx)()
	if _, ok := m.users[r.RequesterID]; !ok {
		return sentinel.ErrNotFound
	}
	m.requests[r.ID] = cloneRequest(r)
	return nil
}

func (m *Memory) FindBloodRequestByID(ctx context.Context, requestID id.BloodRequestID) (*brmodels.BloodRequest, error) {
	defer m.rlock(ctx)()
	r, ok := m.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.withRequester(r), nil
}

// ListBloodRequests puts unfulfilled requests first, newest first within
// each group.
func (m *Memory) ListBloodRequests(ctx context.Context) ([]*brmodels.BloodRequest, error) {
	defer m.rlock(ctx)()
	out := make([]*brmodels.BloodRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, m.withRequester(r))
	}
	slices.SortFunc(out, func(a, b *brmodels.BloodRequest) int {
		if a.IsFulfilled != b.IsFulfilled {
			if a.IsFulfilled {
				return 1
			}
			return -1
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *Memory) MarkBloodRequestFulfilled(ctx context.Context, requestID id.BloodRequestID) error {
	defer m.lock(ctx)()
	current, ok := m.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneRequest(current)
	next.IsFulfilled = true
	m.requests[requestID] = next
	return nil
}

func (m *Memory) DeleteBloodRequest(ctx context.Context, requestID id.BloodRequestID) error {
	defer m.lock(ctx)()
	if _, ok := m.requests[requestID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.requests, requestID)
	return nil
}
