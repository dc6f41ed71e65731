package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	hospitalmodels "lifeline/internal/hospital/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

const hospitalColumns = `id, name, location, total_blood_received, total_lives_saved, created_at, updated_at`

func scanHospital(row scanner) (*hospitalmodels.Hospital, error) {
	var (
		h          hospitalmodels.Hospital
		hospitalID uuid.UUID
	)
	if err := row.Scan(&hospitalID, &h.Name, &h.Location, &h.TotalBloodReceived,
		&h.TotalLivesSaved, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.ID = id.HospitalID(hospitalID)
	return &h, nil
}

func (p *Postgres) CreateHospital(ctx context.Context, h *hospitalmodels.Hospital) error {
	_, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO hospitals (`+hospitalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(h.ID), h.Name, h.Location, h.TotalBloodReceived, h.TotalLivesSaved,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert hospital: %w", err)
	}
	return nil
}

func (p *Postgres) FindHospitalByID(ctx context.Context, hospitalID id.HospitalID) (*hospitalmodels.Hospital, error) {
	h, err := scanHospital(p.exec(ctx).QueryRowContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, uuid.UUID(hospitalID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find hospital: %w", err)
	}
	return h, nil
}

func (p *Postgres) ListHospitals(ctx context.Context) ([]*hospitalmodels.Hospital, error) {
	rows, err := p.exec(ctx).QueryContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	defer rows.Close()

	var out []*hospitalmodels.Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hospitals: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateHospitalDetails(ctx context.Context, h *hospitalmodels.Hospital) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE hospitals SET name = $2, location = $3, updated_at = $4 WHERE id = $1`,
		uuid.UUID(h.ID), h.Name, h.Location, h.UpdatedAt)
	return p.checkUpdated(res, err, "update hospital")
}

// DeleteHospital relies on ON DELETE SET NULL for schedules and records.
func (p *Postgres) DeleteHospital(ctx context.Context, hospitalID id.HospitalID) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`DELETE FROM hospitals WHERE id = $1`, uuid.UUID(hospitalID))
	return p.checkUpdated(res, err, "delete hospital")
}

func (p *Postgres) IncrementHospitalBlood(ctx context.Context, hospitalID id.HospitalID, delta int) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE hospitals SET total_blood_received = total_blood_received + $2 WHERE id = $1`,
		uuid.UUID(hospitalID), delta)
	return p.checkUpdated(res, err, "increment hospital blood")
}

func (p *Postgres) AddHospitalLivesSaved(ctx context.Context, hospitalID id.HospitalID, n int) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE hospitals SET total_lives_saved = total_lives_saved + $2
		 WHERE id = $1 AND total_lives_saved <= $3 - $2`,
		uuid.UUID(hospitalID), n, counterCeiling)
	return p.checkCapped(ctx, res, err, "hospitals", uuid.UUID(hospitalID), "add hospital lives saved")
}

func (p *Postgres) SetHospitalBloodTotals(ctx context.Context, totals map[id.HospitalID]int) error {
	if len(totals) == 0 {
		return nil
	}
	ids := make([]string, 0, len(totals))
	values := make([]int64, 0, len(totals))
	for hospitalID, total := range totals {
		ids = append(ids, hospitalID.String())
		values = append(values, int64(total))
	}
	_, err := p.exec(ctx).ExecContext(ctx, `
		UPDATE hospitals h
		SET total_blood_received = v.total
		FROM unnest($1::uuid[], $2::int[]) AS v(id, total)
		WHERE h.id = v.id`,
		pq.Array(ids), pq.Array(values),
	)
	if err != nil {
		return fmt.Errorf("set hospital totals: %w", err)
	}
	return nil
}

func (p *Postgres) CountHospitals(ctx context.Context) (int, error) {
	var n int
	if err := p.exec(ctx).QueryRowContext(ctx, `SELECT count(*) FROM hospitals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hospitals: %w", err)
	}
	return n, nil
}
