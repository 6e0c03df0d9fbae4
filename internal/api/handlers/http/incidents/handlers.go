package incidents

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"incidentService/internal/bridge"
	"incidentService/internal/domain"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Dispatcher interface {
	Dispatch(ctx context.Context, req bridge.Request) (bridge.Reply, error)
}

type Handler struct {
	logger *slog.Logger
	bus    Dispatcher
}

func NewHandler(logger *slog.Logger, bus Dispatcher) *Handler {
	return &Handler{logger: logger, bus: bus}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) IncidentList(w http.ResponseWriter, r *http.Request) {
	h.log(r).Debug("IncidentList", slog.String("remote", r.RemoteAddr))

	reply, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionIncidents})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toIncidentResponses(reply.Incidents))
}

// IncidentCreate acknowledges with an empty 200; the created incident is
// announced on the event stream.
func (h *Handler) IncidentCreate(w http.ResponseWriter, r *http.Request, body domain.IncidentPatch) {
	l := h.log(r)
	l.Debug("IncidentCreate", slog.String("remote", r.RemoteAddr))

	if _, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionCreateIncident, Incident: body}); err != nil {
		h.handleError(w, r, err)
		return
	}
	l.Info("incident create accepted")
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) IncidentsByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	h.log(r).Debug("IncidentsByStatus", slog.String("status", status))

	reply, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionIncidentsByStatus, Status: status})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toIncidentResponses(reply.Incidents))
}

func (h *Handler) IncidentGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.log(r).Debug("IncidentGet", slog.String("incident_id", id))

	reply, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionIncidentByID, IncidentID: id})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if reply.Incident == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, toIncidentResponse(reply.Incident))
}

func (h *Handler) IncidentUpdate(w http.ResponseWriter, r *http.Request, body domain.IncidentPatch) {
	id := chi.URLParam(r, "id")
	h.log(r).Debug("IncidentUpdate", slog.String("incident_id", id))

	_, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionUpdateIncident, IncidentID: id, Incident: body})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) IncidentsByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.log(r).Debug("IncidentsByName", slog.String("name", name))

	reply, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionIncidentsByName, Name: name})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toIncidentResponses(reply.Incidents))
}

func (h *Handler) IncidentsReset(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("IncidentsReset", slog.String("remote", r.RemoteAddr))

	if _, err := h.bus.Dispatch(r.Context(), bridge.Request{Action: domain.ActionReset}); err != nil {
		h.handleError(w, r, err)
		return
	}
	l.Info("incidents reset")
	w.WriteHeader(http.StatusOK)
}
