package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authmodels "lifeline/internal/auth/models"
	donormodels "lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

const donorColumns = `d.id, d.user_id, d.age, d.weight::float8, d.phone, d.location, d.blood_type,
	d.health_info, d.total_donations, d.lives_saved, d.created_at, d.updated_at`

func donorDest(d *donormodels.Donor, donorID, userID *uuid.UUID, age *sql.NullInt64, weight *sql.NullFloat64, bloodType *sql.NullString) []any {
	return []any{donorID, userID, age, weight, &d.Phone, &d.Location, bloodType,
		&d.HealthInfo, &d.TotalDonations, &d.LivesSaved, &d.CreatedAt, &d.UpdatedAt}
}

func finishDonor(d *donormodels.Donor, donorID, userID uuid.UUID, age sql.NullInt64, weight sql.NullFloat64, bloodType sql.NullString) *donormodels.Donor {
	d.ID = id.DonorID(donorID)
	d.UserID = id.UserID(userID)
	if age.Valid {
		v := int(age.Int64)
		d.Age = &v
	}
	if weight.Valid {
		v := weight.Float64
		d.Weight = &v
	}
	if bloodType.Valid {
		d.BloodType = id.BloodType(bloodType.String)
	}
	return d
}

func scanDonor(row scanner) (*donormodels.Donor, error) {
	var (
		d               donormodels.Donor
		donorID, userID uuid.UUID
		age             sql.NullInt64
		weight          sql.NullFloat64
		bloodType       sql.NullString
	)
	if err := row.Scan(donorDest(&d, &donorID, &userID, &age, &weight, &bloodType)...); err != nil {
		return nil, err
	}
	return finishDonor(&d, donorID, userID, age, weight, bloodType), nil
}

func donorArgs(d *donormodels.Donor) (age sql.NullInt64, weight sql.NullFloat64, bloodType sql.NullString) {
	if d.Age != nil {
		age = sql.NullInt64{Int64: int64(*d.Age), Valid: true}
	}
	if d.Weight != nil {
		weight = sql.NullFloat64{Float64: *d.Weight, Valid: true}
	}
	if d.BloodType != "" {
		bloodType = sql.NullString{String: string(d.BloodType), Valid: true}
	}
	return age, weight, bloodType
}

// CreateDonor reports ErrAlreadyUsed when the user already has a profile.
// A conflicting insert leaves the surrounding transaction usable.
func (p *Postgres) CreateDonor(ctx context.Context, donor *donormodels.Donor) error {
	age, weight, bloodType := donorArgs(donor)
	res, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO donors (id, user_id, age, weight, phone, location, blood_type,
			health_info, total_donations, lives_saved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.UUID(donor.ID), uuid.UUID(donor.UserID), age, weight, donor.Phone, donor.Location,
		bloodType, donor.HealthInfo, donor.TotalDonations, donor.LivesSaved,
		donor.CreatedAt, donor.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert donor: %w", err)
	}
	inserted, err := requireOneRow(res)
	if err != nil {
		return fmt.Errorf("insert donor: %w", err)
	}
	if !inserted {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (p *Postgres) findDonor(ctx context.Context, where string, arg any) (*donormodels.Donor, error) {
	d, err := scanDonor(p.exec(ctx).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors d WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find donor: %w", err)
	}
	return d, nil
}

func (p *Postgres) FindDonorByID(ctx context.Context, donorID id.DonorID) (*donormodels.Donor, error) {
	return p.findDonor(ctx, `d.id = $1`, uuid.UUID(donorID))
}

func (p *Postgres) FindDonorByUserID(ctx context.Context, userID id.UserID) (*donormodels.Donor, error) {
	return p.findDonor(ctx, `d.user_id = $1`, uuid.UUID(userID))
}

// LockDonor takes a row lock held until the surrounding transaction ends.
func (p *Postgres) LockDonor(ctx context.Context, donorID id.DonorID) error {
	var locked uuid.UUID
	err := p.exec(ctx).QueryRowContext(ctx,
		`SELECT id FROM donors WHERE id = $1 FOR UPDATE`, uuid.UUID(donorID)).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock donor: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateDonorProfile(ctx context.Context, donor *donormodels.Donor) error {
	age, weight, bloodType := donorArgs(donor)
	res, err := p.exec(ctx).ExecContext(ctx, `
		UPDATE donors
		SET age = $2, weight = $3, phone = $4, location = $5, blood_type = $6,
			health_info = $7, updated_at = $8
		WHERE id = $1`,
		uuid.UUID(donor.ID), age, weight, donor.Phone, donor.Location, bloodType,
		donor.HealthInfo, donor.UpdatedAt,
	)
	return p.checkUpdated(res, err, "update donor profile")
}

func (p *Postgres) checkUpdated(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ok, err := requireOneRow(res)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

// checkCapped is checkUpdated for guarded increments: a row that exists but
// was not updated hit counterCeiling.
func (p *Postgres) checkCapped(ctx context.Context, res sql.Result, err error, table string, rowID uuid.UUID, op string) error {
	err = p.checkUpdated(res, err, op)
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	var exists bool
	if qErr := p.exec(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, rowID).Scan(&exists); qErr != nil {
		return fmt.Errorf("%s: %w", op, qErr)
	}
	if exists {
		return sentinel.ErrInvalidState
	}
	return sentinel.ErrNotFound
}

func (p *Postgres) IncrementDonorDonations(ctx context.Context, donorID id.DonorID, delta int) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE donors SET total_donations = total_donations + $2 WHERE id = $1`,
		uuid.UUID(donorID), delta)
	return p.checkUpdated(res, err, "increment donor donations")
}

func (p *Postgres) AddDonorLivesSaved(ctx context.Context, donorID id.DonorID, n int) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE donors SET lives_saved = lives_saved + $2 WHERE id = $1 AND lives_saved <= $3 - $2`,
		uuid.UUID(donorID), n, counterCeiling)
	return p.checkCapped(ctx, res, err, "donors", uuid.UUID(donorID), "add donor lives saved")
}

// SetDonorTotals overwrites total_donations in one statement.
func (p *Postgres) SetDonorTotals(ctx context.Context, totals map[id.DonorID]int) error {
	if len(totals) == 0 {
		return nil
	}
	ids := make([]string, 0, len(totals))
	values := make([]int64, 0, len(totals))
	for donorID, total := range totals {
		ids = append(ids, donorID.String())
		values = append(values, int64(total))
	}
	_, err := p.exec(ctx).ExecContext(ctx, `
		UPDATE donors d
		SET total_donations = v.total
		FROM unnest($1::uuid[], $2::int[]) AS v(id, total)
		WHERE d.id = v.id`,
		pq.Array(ids), pq.Array(values),
	)
	if err != nil {
		return fmt.Errorf("set donor totals: %w", err)
	}
	return nil
}

func (p *Postgres) ListDonors(ctx context.Context) ([]*donormodels.Donor, error) {
	rows, err := p.exec(ctx).QueryContext(ctx,
		`SELECT `+donorColumns+` FROM donors d ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var out []*donormodels.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return out, nil
}

func (p *Postgres) ListDonorProfiles(ctx context.Context) ([]donormodels.Profile, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, `
		SELECT `+donorColumns+`,
			u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
			u.role, u.is_active, u.created_at
		FROM donors d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list donor profiles: %w", err)
	}
	defer rows.Close()

	var out []donormodels.Profile
	for rows.Next() {
		var (
			d                    donormodels.Donor
			u                    authmodels.User
			donorID, userID, uID uuid.UUID
			age                  sql.NullInt64
			weight               sql.NullFloat64
			bloodType            sql.NullString
			role                 string
		)
		dest := donorDest(&d, &donorID, &userID, &age, &weight, &bloodType)
		dest = append(dest, &uID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &role, &u.Active, &u.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan donor profile: %w", err)
		}
		u.ID = id.UserID(uID)
		u.Role = id.Role(role)
		out = append(out, donormodels.Profile{
			Donor: finishDonor(&d, donorID, userID, age, weight, bloodType),
			User:  &u,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donor profiles: %w", err)
	}
	return out, nil
}

func (p *Postgres) ListLeaderboard(ctx context.Context, limit int) ([]donormodels.LeaderboardRow, error) {
	rows, err := p.exec(ctx).QueryContext(ctx, `
		SELECT d.id, u.username, u.first_name, u.last_name, COALESCE(d.blood_type, ''),
			d.total_donations, d.lives_saved, d.created_at
		FROM donors d
		JOIN users u ON u.id = d.user_id
		WHERE d.total_donations > 0
		ORDER BY d.total_donations DESC, d.created_at ASC, d.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []donormodels.LeaderboardRow
	for rows.Next() {
		var (
			row       donormodels.LeaderboardRow
			donorID   uuid.UUID
			bloodType string
		)
		if err := rows.Scan(&donorID, &row.Username, &row.FirstName, &row.LastName, &bloodType,
			&row.TotalDonations, &row.LivesSaved, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		row.DonorID = id.DonorID(donorID)
		row.BloodType = id.BloodType(bloodType)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return out, nil
}

func (p *Postgres) CountDonors(ctx context.Context) (int, error) {
	var n int
	if err := p.exec(ctx).QueryRowContext(ctx, `SELECT count(*) FROM donors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count donors: %w", err)
	}
	return n, nil
}

func (p *Postgres) SumLivesSaved(ctx context.Context) (int, error) {
	var n int
	if err := p.exec(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(sum(lives_saved), 0) FROM donors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sum lives saved: %w", err)
	}
	return n, nil
}
