package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/donor/models"
	"lifeline/internal/donor/service"
	id "lifeline/pkg/domain"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/requestcontext"
)

// Service is the donor profile surface.
type Service interface {
	Profile(ctx context.Context, userID id.UserID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.Profile, error)
	Dashboard(ctx context.Context, userID id.UserID) (*service.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the donor-only endpoints. The router must already
// authenticate the caller.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapManageProfile, h.logger))
		r.Get("/donor/profile", h.HandleProfile)
		r.Patch("/donor/profile/update", h.HandleUpdateProfile)
		r.Put("/donor/profile/update", h.HandleUpdateProfile)
		r.Get("/donor/dashboard", h.HandleDashboard)
	})
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.service.Profile(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load donor profile",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", requestcontext.UserID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToProfileResponse(profile))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	profile, err := h.service.UpdateProfile(ctx, requestcontext.UserID(ctx), req.update)
	if err != nil {
		h.logger.WarnContext(ctx, "donor profile update failed",
			"request_id", requestID,
			"user_id", requestcontext.UserID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToProfileResponse(profile))
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard, err := h.service.Dashboard(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load donor dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", requestcontext.UserID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}
