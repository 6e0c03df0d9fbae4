package admin

import (
	"context"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"incidentService/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type DroppedCommands interface {
	List(ctx context.Context, limit int64) ([]domain.DroppedCommand, error)
}

type Handler struct {
	logger  *slog.Logger
	Dropped DroppedCommands
}

func NewHandler(logger *slog.Logger, dropped DroppedCommands) *Handler {
	return &Handler{
		logger:  logger,
		Dropped: dropped,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

// DroppedCommandList returns the most recently dropped inbound commands,
// newest first.
func (h *Handler) DroppedCommandList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("DroppedCommandList", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	limit := parseInt(r.URL.Query().Get("limit"), defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
		l.Warn("limit capped", slog.Int("limit", limit))
	}

	items, err := h.Dropped.List(r.Context(), int64(limit))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.DroppedCommand{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"commands": items,
		"count":    len(items),
		"limit":    limit,
	})
}
