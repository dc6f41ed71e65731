package handler

import (
	"time"

	authhandler "lifeline/internal/auth/handler"
	"lifeline/internal/donor/models"
	"lifeline/internal/donor/service"
)

// ProfileResponse is the donor view shared by the donor, admin and schedule
// endpoints.
type ProfileResponse struct {
	ID             string                   `json:"id"`
	User           authhandler.UserResponse `json:"user"`
	Age            *int                     `json:"age"`
	Weight         *float64                 `json:"weight"`
	Phone          string                   `json:"phone"`
	Location       string                   `json:"location"`
	BloodType      *string                  `json:"blood_type"`
	HealthInfo     string                   `json:"health_info"`
	TotalDonations int                      `json:"total_donations"`
	LivesSaved     int                      `json:"lives_saved"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

type DashboardResponse struct {
	Donor            ProfileResponse `json:"donor"`
	PendingSchedules int             `json:"pending_schedules"`
}

func ToProfileResponse(p *models.Profile) ProfileResponse {
	d := p.Donor
	resp := ProfileResponse{
		ID:             d.ID.String(),
		User:           authhandler.ToUserResponse(p.User),
		Age:            d.Age,
		Weight:         d.Weight,
		Phone:          d.Phone,
		Location:       d.Location,
		HealthInfo:     d.HealthInfo,
		TotalDonations: d.TotalDonations,
		LivesSaved:     d.LivesSaved,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.BloodType != "" {
		bt := d.BloodType.String()
		resp.BloodType = &bt
	}
	return resp
}

func toDashboardResponse(d *service.Dashboard) DashboardResponse {
	return DashboardResponse{Donor: ToProfileResponse(d.Profile), PendingSchedules: d.PendingSchedules}
}
