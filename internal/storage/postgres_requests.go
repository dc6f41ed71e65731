package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	brmodels "lifeline/internal/bloodrequest/models"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/sentinel"
)

const requestSelect = `
	SELECT b.id, b.requester_id, u.username, b.patient_name, b.blood_type, b.hospital_name,
		b.hospital_location, b.contact_phone, b.urgency, b.reason, b.is_fulfilled, b.created_at
	FROM blood_requests b
	JOIN users u ON u.id = b.requester_id`

func scanRequest(row scanner) (*brmodels.BloodRequest, error) {
	var (
		r                      brmodels.BloodRequest
		requestID, requesterID uuid.UUID
		bloodType, urgency     string
	)
	if err := row.Scan(&requestID, &requesterID, &r.RequesterName, &r.PatientName, &bloodType,
		&r.HospitalName, &r.HospitalLocation, &r.ContactPhone, &urgency, &r.Reason,
		&r.IsFulfilled, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ID = id.BloodRequestID(requestID)
	r.RequesterID = id.UserID(requesterID)
	r.BloodType = id.BloodType(bloodType)
	r.Urgency = brmodels.Urgency(urgency)
	return &r, nil
}

func (p *Postgres) CreateBloodRequest(ctx context.Context, r *brmodels.BloodRequest) error {
	_, err := p.exec(ctx).ExecContext(ctx, `
		INSERT INTO blood_requests (id, requester_id, patient_name, blood_type, hospital_name,
			hospital_location, contact_phone, urgency, reason, is_fulfilled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(r.ID), uuid.UUID(r.RequesterID), r.PatientName, string(r.BloodType), r.HospitalName,
		r.HospitalLocation, r.ContactPhone, string(r.Urgency), r.Reason, r.IsFulfilled, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blood request: %w", err)
	}
	return nil
}

func (p *Postgres) FindBloodRequestByID(ctx context.Context, requestID id.BloodRequestID) (*brmodels.BloodRequest, error) {
	r, err := scanRequest(p.exec(ctx).QueryRowContext(ctx,
		requestSelect+` WHERE b.id = $1`, uuid.UUID(requestID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find blood request: %w", err)
	}
	return r, nil
}

func (p *Postgres) ListBloodRequests(ctx context.Context) ([]*brmodels.BloodRequest, error) {
	rows, err := p.exec(ctx).QueryContext(ctx,
		requestSelect+` ORDER BY b.is_fulfilled ASC, b.created_at DESC, b.id`)
	if err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	defer rows.Close()

	var out []*brmodels.BloodRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blood request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood requests: %w", err)
	}
	return out, nil
}

func (p *Postgres) MarkBloodRequestFulfilled(ctx context.Context, requestID id.BloodRequestID) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`UPDATE blood_requests SET is_fulfilled = TRUE WHERE id = $1`, uuid.UUID(requestID))
	return p.checkUpdated(res, err, "fulfill blood request")
}

func (p *Postgres) DeleteBloodRequest(ctx context.Context, requestID id.BloodRequestID) error {
	res, err := p.exec(ctx).ExecContext(ctx,
		`DELETE FROM blood_requests WHERE id = $1`, uuid.UUID(requestID))
	return p.checkUpdated(res, err, "delete blood request")
}
