package models

import (
	"time"

	authmodels "lifeline/internal/auth/models"
	id "lifeline/pkg/domain"
)

// Profile is a donor together with its account, the shape every read
// endpoint returns.
type Profile struct {
	Donor *Donor
	User  *authmodels.User
}

// LeaderboardRow is the projection the ranker consumes.
type LeaderboardRow struct {
	DonorID        id.DonorID
	Username       string
	FirstName      string
	LastName       string
	BloodType      id.BloodType
	TotalDonations int
	LivesSaved     int
	CreatedAt      time.Time
}
