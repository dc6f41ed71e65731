package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	donationmodels "lifeline/internal/donation/models"
	donormodels "lifeline/internal/donor/models"
	dErrors "lifeline/pkg/domain-errors"
	audit "lifeline/pkg/platform/audit"
)

// statsTimeout bounds the whole fan-out; every query is a single aggregate.
const statsTimeout = 5 * time.Second

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// Store is the read-only aggregate surface the dashboard needs.
type Store interface {
	CountDonors(ctx context.Context) (int, error)
	CountHospitals(ctx context.Context) (int, error)
	CountSchedulesByStatus(ctx context.Context, status donationmodels.ScheduleStatus) (int, error)
	SumLivesSaved(ctx context.Context) (int, error)
	SumBloodAmount(ctx context.Context) (float64, error)
	ListDonorProfiles(ctx context.Context) ([]donormodels.Profile, error)
}

type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Stats struct {
	TotalDonors       int
	TotalHospitals    int
	TotalDonations    int
	PendingSchedules  int
	CanceledSchedules int
	TotalLivesSaved   int
	TotalBloodUnits   float64
}

type Service struct {
	store Store
	audit AuditReader
}

func New(store Store, auditReader AuditReader) *Service {
	return &Service{store: store, audit: auditReader}
}

// Stats gathers the dashboard numbers concurrently; the first failure
// cancels the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	stats := &Stats{}

	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	byStatus := func(status donationmodels.ScheduleStatus) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			return s.store.CountSchedulesByStatus(ctx, status)
		}
	}

	count(&stats.TotalDonors, s.store.CountDonors)
	count(&stats.TotalHospitals, s.store.CountHospitals)
	count(&stats.TotalDonations, byStatus(donationmodels.StatusDone))
	count(&stats.PendingSchedules, byStatus(donationmodels.StatusPending))
	count(&stats.CanceledSchedules, byStatus(donationmodels.StatusCanceled))
	count(&stats.TotalLivesSaved, s.store.SumLivesSaved)
	g.Go(func() error {
		total, err := s.store.SumBloodAmount(ctx)
		if err != nil {
			return err
		}
		stats.TotalBloodUnits = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather stats")
	}
	return stats, nil
}

func (s *Service) Donors(ctx context.Context) ([]donormodels.Profile, error) {
	profiles, err := s.store.ListDonorProfiles(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
	}
	return profiles, nil
}

// AuditFeed returns the newest audit events. limit <= 0 selects the default.
func (s *Service) AuditFeed(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)
	events, err := s.audit.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit log")
	}
	return events, nil
}
