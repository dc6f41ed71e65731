package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/hospital/models"
	"lifeline/internal/hospital/service"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
	authmw "lifeline/pkg/platform/middleware/auth"
	"lifeline/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.Hospital, error)
	Get(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error)
	Create(ctx context.Context, name, location string) (*models.Hospital, error)
	Update(ctx context.Context, hospitalID id.HospitalID, details service.Details) (*models.Hospital, error)
	Delete(ctx context.Context, hospitalID id.HospitalID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalogue for any authenticated caller and the admin
// CRUD routes behind CapManageHospitals.
func (h *Handler) Register(r chi.Router) {
	r.Get("/hospitals", h.HandleList)
	r.Get("/hospitals/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCapability(id.CapManageHospitals, h.logger))
		r.Post("/admin/hospitals/add", h.HandleCreate)
		r.Get("/admin/hospitals/{id}", h.HandleGet)
		r.Patch("/admin/hospitals/{id}", h.HandleUpdate)
		r.Put("/admin/hospitals/{id}", h.HandleUpdate)
		r.Delete("/admin/hospitals/{id}", h.HandleDelete)
	})
}

// HospitalResponse is also embedded by the schedule views.
type HospitalResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	TotalBloodReceived int       `json:"total_blood_received"`
	TotalLivesSaved    int       `json:"total_lives_saved"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ToHospitalResponse(h *models.Hospital) HospitalResponse {
	return HospitalResponse{
		ID:                 h.ID.String(),
		Name:               h.Name,
		Location:           h.Location,
		TotalBloodReceived: h.TotalBloodReceived,
		TotalLivesSaved:    h.TotalLivesSaved,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

// HospitalRequest carries the editable fields. Counter fields in the body
// are ignored.
type HospitalRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

func (r *HospitalRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Location != nil {
		*r.Location = strings.TrimSpace(*r.Location)
	}
}

func (r *HospitalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name != nil && *r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "hospital name is required").WithDetails("field", "name")
	}
	return nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hospitals, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list hospitals", err)
		return
	}
	out := make([]HospitalResponse, 0, len(hospitals))
	for _, hospital := range hospitals {
		out = append(out, ToHospitalResponse(hospital))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hospitalID, err := id.ParseHospitalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hospital, err := h.service.Get(ctx, hospitalID)
	if err != nil {
		h.fail(ctx, w, "failed to load hospital", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToHospitalResponse(hospital))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[HospitalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	name, location := "", ""
	if req.Name != nil {
		name = *req.Name
	}
	if req.Location != nil {
		location = *req.Location
	}
	hospital, err := h.service.Create(ctx, name, location)
	if err != nil {
		h.fail(ctx, w, "failed to create hospital", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToHospitalResponse(hospital))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hospitalID, err := id.ParseHospitalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[HospitalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	hospital, err := h.service.Update(ctx, hospitalID, service.Details{Name: req.Name, Location: req.Location})
	if err != nil {
		h.fail(ctx, w, "failed to update hospital", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToHospitalResponse(hospital))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hospitalID, err := id.ParseHospitalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, hospitalID); err != nil {
		h.fail(ctx, w, "failed to delete hospital", err)
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
