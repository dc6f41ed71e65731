package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifeline/internal/leaderboard"
	"lifeline/pkg/platform/httputil"
	"lifeline/pkg/requestcontext"
)

type Service interface {
	Top(ctx context.Context, limit int) (*leaderboard.Board, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/donors/leaderboard", h.HandleTop)
}

// HandleTop never rejects a bad limit; it falls back to the default.
func (h *Handler) HandleTop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	board, err := h.service.Top(ctx, leaderboard.ParseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build leaderboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}
