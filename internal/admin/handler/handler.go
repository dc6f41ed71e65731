package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/admin/service"
	donorhandler "lifeline/internal/donor/handler"
	donormodels "lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/requestcontext"
)

type Service interface {
	Stats(ctx context.Context) (*service.Stats, error)
	Donors(ctx context.Context) ([]donormodels.Profile, error)
	AuditFeed(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapViewAdminData, h.logger))
		r.Get("/admin/stats", h.HandleStats)
		r.Get("/admin/donors", h.HandleDonors)
		r.Get("/admin/audit", h.HandleAudit)
	})
}

type StatsResponse struct {
	TotalDonors       int     `json:"total_donors"`
	TotalHospitals    int     `json:"total_hospitals"`
	TotalDonations    int     `json:"total_donations"`
	PendingSchedules  int     `json:"pending_schedules"`
	CanceledSchedules int     `json:"canceled_schedules"`
	TotalLivesSaved   int     `json:"total_lives_saved"`
	TotalBloodUnits   float64 `json:"total_blood_units"`
}

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to gather stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{
		TotalDonors:       stats.TotalDonors,
		TotalHospitals:    stats.TotalHospitals,
		TotalDonations:    stats.TotalDonations,
		PendingSchedules:  stats.PendingSchedules,
		CanceledSchedules: stats.CanceledSchedules,
		TotalLivesSaved:   stats.TotalLivesSaved,
		TotalBloodUnits:   stats.TotalBloodUnits,
	})
}

func (h *Handler) HandleDonors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profiles, err := h.service.Donors(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list donors", err)
		return
	}
	out := make([]donorhandler.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, donorhandler.ToProfileResponse(&profiles[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleAudit ignores a malformed limit rather than rejecting it.
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.service.AuditFeed(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "failed to read audit log", err)
		return
	}
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp := AuditEventResponse{
			ID:        e.ID.String(),
			Category:  string(e.Category),
			Action:    e.Action,
			Subject:   e.Subject,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			Timestamp: e.Timestamp,
		}
		if !e.UserID.IsNil() {
			resp.UserID = e.UserID.String()
		}
		if !e.ActorID.IsNil() {
			resp.ActorID = e.ActorID.String()
		}
		out = append(out, resp)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
