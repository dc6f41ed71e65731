package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/bloodrequest/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.BloodRequest, error)
	Create(ctx context.Context, draft models.Draft) (*models.BloodRequest, error)
	Fulfill(ctx context.Context, requestID id.BloodRequestID) (*models.BloodRequest, error)
	Delete(ctx context.Context, requestID id.BloodRequestID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/emergency-requests", h.HandleList)
	r.Post("/emergency-requests", h.HandleCreate)
	r.Patch("/emergency-requests/{id}/fulfill", h.HandleFulfill)
	r.Put("/emergency-requests/{id}/fulfill", h.HandleFulfill)
	r.Delete("/emergency-requests/{id}/delete", h.HandleDelete)

	r.With(authmw.RequireCapability(id.CapModerateRequests, h.logger)).
		Get("/admin/emergency-requests", h.HandleList)
}

type CreateRequest struct {
	PatientName      string `json:"patient_name"`
	BloodType        string `json:"blood_type"`
	HospitalName     string `json:"hospital_name"`
	HospitalLocation string `json:"hospital_location"`
	ContactPhone     string `json:"contact_phone"`
	Urgency          string `json:"urgency"`
	Reason           string `json:"reason"`
}

// Validate only checks the envelope; field rules live in the model.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

type BloodRequestResponse struct {
	ID               string    `json:"id"`
	Requester        string    `json:"requester"`
	RequesterName    string    `json:"requester_name"`
	PatientName      string    `json:"patient_name"`
	BloodType        string    `json:"blood_type"`
	HospitalName     string    `json:"hospital_name"`
	HospitalLocation string    `json:"hospital_location"`
	ContactPhone     string    `json:"contact_phone"`
	Urgency          string    `json:"urgency"`
	Reason           string    `json:"reason"`
	IsFulfilled      bool      `json:"is_fulfilled"`
	CreatedAt        time.Time `json:"created_at"`
}

func toResponse(r *models.BloodRequest) BloodRequestResponse {
	return BloodRequestResponse{
		ID:               r.ID.String(),
		Requester:        r.RequesterID.String(),
		RequesterName:    r.RequesterName,
		PatientName:      r.PatientName,
		BloodType:        r.BloodType.String(),
		HospitalName:     r.HospitalName,
		HospitalLocation: r.HospitalLocation,
		ContactPhone:     r.ContactPhone,
		Urgency:          string(r.Urgency),
		Reason:           r.Reason,
		IsFulfilled:      r.IsFulfilled,
		CreatedAt:        r.CreatedAt,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requests, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list blood requests", err)
		return
	}
	out := make([]BloodRequestResponse, 0, len(requests))
	for _, br := range requests {
		out = append(out, toResponse(br))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.service.Create(ctx, models.Draft{
		PatientName:      req.PatientName,
		BloodType:        req.BloodType,
		HospitalName:     req.HospitalName,
		HospitalLocation: req.HospitalLocation,
		ContactPhone:     req.ContactPhone,
		Urgency:          req.Urgency,
		Reason:           req.Reason,
	})
	if err != nil {
		h.fail(ctx, w, "failed to post blood request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseBloodRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fulfilled, err := h.service.Fulfill(ctx, requestID)
	if err != nil {
		h.fail(ctx, w, "failed to fulfill blood request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(fulfilled))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseBloodRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestID); err != nil {
		h.fail(ctx, w, "failed to delete blood request", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
