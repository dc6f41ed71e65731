// Package leaderboard ranks donors by completed donations.
package leaderboard

import (
	"strconv"
	"strings"

	donormodels "lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Entry is one ranked donor. Rank is 1-based. Entries round-trip through
// the cache as JSON.
type Entry struct {
	Rank           int          `json:"rank"`
	DonorID        string       `json:"id"`
	Name           string       `json:"name"`
	BloodType      id.BloodType `json:"blood_type"`
	TotalDonations int          `json:"total_donations"`
	LivesSaved     int          `json:"lives_saved"`
}

type Board struct {
	Entries    []Entry `json:"leaderboard"`
	TotalCount int     `json:"total_count"`
}

// ParseLimit reads the limit query value. Missing, non-numeric or values
// below 1 give DefaultLimit; anything above MaxLimit is capped.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}

// Rank numbers rows in the order given. Rows must already be sorted by
// total donations descending with a stable tie-break.
func Rank(rows []donormodels.LeaderboardRow) Board {
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:           i + 1,
			DonorID:        row.DonorID.String(),
			Name:           displayName(row),
			BloodType:      bloodType(row.BloodType),
			TotalDonations: row.TotalDonations,
			LivesSaved:     row.LivesSaved,
		})
	}
	return Board{Entries: entries, TotalCount: len(entries)}
}

func displayName(row donormodels.LeaderboardRow) string {
	if name := strings.TrimSpace(row.FirstName + " " + row.LastName); name != "" {
		return name
	}
	return row.Username
}

func bloodType(bt id.BloodType) id.BloodType {
	if bt == "" {
		return "N/A"
	}
	return bt
}
