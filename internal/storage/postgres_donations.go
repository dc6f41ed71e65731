package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	donationmodels "lifeline/internal/donation/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

const scheduleColumns = `s.id, s.donor_id, s.preferred_hospital_id, s.scheduled_date, s.donation_type,
	s.status, s.created_at, s.updated_at`

const recordColumns = `r.id, r.schedule_id, r.hospital_id, r.donation_date, r.blood_amount::float8`

func scanSchedule(row scanner) (*donationmodels.Schedule, error) {
	var (
		s                   donationmodels.Schedule
		scheduleID, donorID uuid.UUID
		hospitalID          uuid.NullUUID
		donationType        string
		status              string
	)
	if err := row.Scan(&scheduleID, &donorID, &hospitalID, &s.ScheduledAt, &donationType,
		&status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ID = id.ScheduleID(scheduleID)
	s.DonorID = id.DonorID(donorID)
	s.PreferredHospitalID = fromNullUUID[id.HospitalID](hospitalID)
	s.DonationType = donationmodels.DonationType(donationType)
	s.Status = donationmodels.ScheduleStatus(status)
	return &s, nil
}

func scanRecord(row scanner) (*donationmodels.Record, error) {
	var (
		r                    donationmodels.Record
		recordID, scheduleID uuid.UUID
		hospitalID           uuid.NullUUID
	)
	if err := row.Scan(&recordID, &scheduleID, &hospitalID, &r.DonationDate, &r.BloodAmount); err != nil {
		return nil, err
	}
	r.ID = id.RecordID(recordID)
	r.ScheduleID = id.ScheduleID(scheduleID)
	r.HospitalID = fromNullUUID[id.HospitalID](hospitalID)
	return &r, nil
}

func (p *Postgres) CreateSchedule(ctx context.Context, s *donationmodels.Schedule) error {
	_, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO donation_schedules (id, donor_id, preferred_hospital_id, scheduled_date,
			donation_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(s.ID), uuid.UUID(s.DonorID), nullableUUID(s.PreferredHospitalID), s.ScheduledAt,
		string(s.DonationType), string(s.Status), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (p *Postgres) findSchedule(ctx context.Context, query string, scheduleID id.ScheduleID) (*donationmodels.Schedule, error) {
	s, err := scanSchedule(p.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(scheduleID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return s, nil
}

func (p *Postgres) FindScheduleByID(ctx context.Context, scheduleID id.ScheduleID) (*donationmodels.Schedule, error) {
	return p.findSchedule(ctx,
		`SELECT `+scheduleColumns+` FROM donation_schedules s WHERE s.id = $1`, scheduleID)
}

// FindScheduleForUpdate locks the schedule row until the transaction ends.
func (p *Postgres) FindScheduleForUpdate(ctx context.Context, scheduleID id.ScheduleID) (*donationmodels.Schedule, error) {
	return p.findSchedule(ctx,
		`SELECT `+scheduleColumns+` FROM donation_schedules s WHERE s.id = $1 FOR UPDATE`, scheduleID)
}

func (p *Postgres) UpdateScheduleStatus(ctx context.Context, s *donationmodels.Schedule) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE donation_schedules SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(s.ID), string(s.Status), s.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	return p.checkUpdated(res, err, "update schedule status")
}

func (p *Postgres) listSchedules(ctx context.Context, query string, args ...any) ([]*donationmodels.Schedule, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*donationmodels.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

func (p *Postgres) ListSchedulesByDonor(ctx context.Context, donorID id.DonorID) ([]*donationmodels.Schedule, error) {
	return p.listSchedules(ctx, `
		SELECT `+scheduleColumns+` FROM donation_schedules s
		WHERE s.donor_id = $1
		ORDER BY s.scheduled_date DESC, s.id`, uuid.UUID(donorID))
}

func (p *Postgres) ListAllSchedules(ctx context.Context) ([]*donationmodels.Schedule, error) {
	return p.listSchedules(ctx, `
		SELECT `+scheduleColumns+` FROM donation_schedules s
		ORDER BY s.scheduled_date DESC, s.id`)
}

func (p *Postgres) CountSchedulesByStatus(ctx context.Context, status donationmodels.ScheduleStatus) (int, error) {
	var n int
	if err := p.exec(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM donation_schedules WHERE status = $1`, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return n, nil
}

func (p *Postgres) CreateRecord(ctx context.Context, r *donationmodels.Record) error {
	_, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO donation_records (id, schedule_id, hospital_id, donation_date, blood_amount)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(r.ID), uuid.UUID(r.ScheduleID), nullableUUID(r.HospitalID), r.DonationDate, r.BloodAmount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (p *Postgres) findRecord(ctx context.Context, query string, recordID id.RecordID) (*donationmodels.Record, error) {
	r, err := scanRecord(p.exec(ctx).QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return r, nil
}

func (p *Postgres) FindRecordByID(ctx context.Context, recordID id.RecordID) (*donationmodels.Record, error) {
	return p.findRecord(ctx,
		`SELECT `+recordColumns+` FROM donation_records r WHERE r.id = $1`, recordID)
}

// FindRecordForUpdate locks the record row until the transaction ends.
func (p *Postgres) FindRecordForUpdate(ctx context.Context, recordID id.RecordID) (*donationmodels.Record, error) {
	return p.findRecord(ctx,
		`SELECT `+recordColumns+` FROM donation_records r WHERE r.id = $1 FOR UPDATE`, recordID)
}

func (p *Postgres) listRecords(ctx context.Context, query string, args ...any) ([]*donationmodels.Record, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*donationmodels.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (p *Postgres) FindRecordsBySchedules(ctx context.Context, scheduleIDs []id.ScheduleID) (map[id.ScheduleID]*donationmodels.Record, error) {
	out := make(map[id.ScheduleID]*donationmodels.Record, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return out, nil
	}
	raw := make([]string, len(scheduleIDs))
	for i, sid := range scheduleIDs {
		raw[i] = sid.String()
	}
	records, err := p.listRecords(ctx, `
		SELECT `+recordColumns+` FROM donation_records r
		WHERE r.schedule_id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		out[r.ScheduleID] = r
	}
	return out, nil
}

func (p *Postgres) ListRecordsByDonor(ctx context.Context, donorID id.DonorID) ([]*donationmodels.Record, error) {
	return p.listRecords(ctx, `
		SELECT `+recordColumns+` FROM donation_records r
		JOIN donation_schedules s ON s.id = r.schedule_id
		WHERE s.donor_id = $1
		ORDER BY r.donation_date DESC`, uuid.UUID(donorID))
}

func (p *Postgres) SumBloodAmount(ctx context.Context) (float64, error) {
	var total float64
	if err := p.exec(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(sum(blood_amount), 0)::float8 FROM donation_records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum blood amount: %w", err)
	}
	return total, nil
}

func (p *Postgres) CountRecordsPerDonor(ctx context.Context) (map[id.DonorID]int, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, `
		SELECT d.id, count(r.id)
		FROM donors d
		LEFT JOIN donation_schedules s ON s.donor_id = d.id
		LEFT JOIN donation_records r ON r.schedule_id = s.id
		GROUP BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("count records per donor: %w", err)
	}
	defer rows.Close()

	out := make(map[id.DonorID]int)
	for rows.Next() {
		var (
			donorID uuid.UUID
			n       int
		)
		if err := rows.Scan(&donorID, &n); err != nil {
			return nil, fmt.Errorf("scan donor record count: %w", err)
		}
		out[id.DonorID(donorID)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donor record counts: %w", err)
	}
	return out, nil
}

func (p *Postgres) CountRecordsPerHospital(ctx context.Context) (map[id.HospitalID]int, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, `
		SELECT h.id, count(r.id)
		FROM hospitals h
		LEFT JOIN donation_records r ON r.hospital_id = h.id
		GROUP BY h.id`)
	if err != nil {
		return nil, fmt.Errorf("count records per hospital: %w", err)
	}
	defer rows.Close()

	out := make(map[id.HospitalID]int)
	for rows.Next() {
		var (
			hospitalID uuid.UUID
			n          int
		)
		if err := rows.Scan(&hospitalID, &n); err != nil {
			return nil, fmt.Errorf("scan hospital record count: %w", err)
		}
		out[id.HospitalID(hospitalID)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hospital record counts: %w", err)
	}
	return out, nil
}
