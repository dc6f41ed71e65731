package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/donation/eligibility"
	"lifeline/internal/donation/models"
	"lifeline/internal/donation/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/requestcontext"
)

type Service interface {
	Eligibility(ctx context.Context, userID id.UserID) (eligibility.Verdict, error)
	Schedule(ctx context.Context, userID id.UserID, in service.ScheduleInput) (*service.ScheduleView, error)
	ListSchedules(ctx context.Context) ([]service.ScheduleView, error)
	Certificate(ctx context.Context, recordID id.RecordID) (*models.Certificate, error)
	Finalize(ctx context.Context, scheduleID id.ScheduleID, in service.FinalizeInput) (*service.ScheduleView, error)
	Cancel(ctx context.Context, scheduleID id.ScheduleID) (*service.ScheduleView, error)
	UpdateLivesSaved(ctx context.Context, recordID id.RecordID, n int) (*service.RecordView, error)
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/donations/schedules", h.HandleListSchedules)
	r.Get("/donations/certificate/{record_id}", h.HandleCertificate)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapScheduleDonation, h.logger))
		r.Post("/donations/schedule", h.HandleSchedule)
		r.Get("/donations/eligibility", h.HandleEligibility)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapFinalizeDonation, h.logger))
		r.Patch("/admin/schedules/{id}/done", h.HandleFinalize)
		r.Put("/admin/schedules/{id}/done", h.HandleFinalize)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapCancelSchedule, h.logger))
		r.Patch("/admin/schedules/{id}/cancel", h.HandleCancel)
		r.Put("/admin/schedules/{id}/cancel", h.HandleCancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapRecordLivesSaved, h.logger))
		r.Patch("/admin/records/{id}/update-lives", h.HandleUpdateLivesSaved)
		r.Put("/admin/records/{id}/update-lives", h.HandleUpdateLivesSaved)
	})
	r.With(authmw.RequireCapability(id.CapReconcile, h.logger)).
		Post("/admin/counters/reconcile", h.HandleReconcile)
}

func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ScheduleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.Schedule(ctx, requestcontext.UserID(ctx), req.input)
	if err != nil {
		h.fail(ctx, w, "failed to schedule donation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toScheduleResponse(view))
}

func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verdict, err := h.service.Eligibility(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to evaluate eligibility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEligibilityResponse(verdict))
}

func (h *Handler) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.ListSchedules(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list schedules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toScheduleResponses(views))
}

func (h *Handler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "record_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cert, err := h.service.Certificate(ctx, recordID)
	if err != nil {
		h.fail(ctx, w, "failed to build certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}

func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req FinalizeRequest
	if err := httputil.DecodeOptionalJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Finalize(ctx, scheduleID, in)
	if err != nil {
		h.fail(ctx, w, "failed to finalize schedule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toScheduleResponse(view))
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Cancel(ctx, scheduleID)
	if err != nil {
		h.fail(ctx, w, "failed to cancel schedule", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toScheduleResponse(view))
}

func (h *Handler) HandleUpdateLivesSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[LivesSavedRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.UpdateLivesSaved(ctx, recordID, req.LivesSaved)
	if err != nil {
		h.fail(ctx, w, "failed to update lives saved", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(view))
}

func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.service.Reconcile(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to reconcile counters", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReconcileResponse(report))
}

// fail logs conflicts and validation failures at Warn; anything internal is
// an Error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
