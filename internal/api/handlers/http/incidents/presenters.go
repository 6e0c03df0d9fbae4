package incidents

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"incidentService/internal/domain"
	"incidentService/pkg/e"
)

type incidentResponse struct {
	ID                string `json:"id"`
	Lat               string `json:"lat"`
	Lon               string `json:"lon"`
	NumberOfPeople    int    `json:"numberOfPeople"`
	MedicalNeeded     bool   `json:"medicalNeeded"`
	VictimName        string `json:"victimName"`
	VictimPhoneNumber string `json:"victimPhoneNumber"`
	Status            string `json:"status"`
	Timestamp         int64  `json:"timestamp"`
}

func toIncidentResponse(inc *domain.Incident) incidentResponse {
	return incidentResponse{
		ID:                inc.ID,
		Lat:               inc.Latitude,
		Lon:               inc.Longitude,
		NumberOfPeople:    inc.NumberOfPeople,
		MedicalNeeded:     inc.MedicalNeeded,
		VictimName:        inc.VictimName,
		VictimPhoneNumber: inc.VictimPhoneNumber,
		Status:            inc.Status,
		Timestamp:         inc.Timestamp(),
	}
}

func toIncidentResponses(items []*domain.Incident) []incidentResponse {
	out := make([]incidentResponse, 0, len(items))
	for _, inc := range items {
		out = append(out, toIncidentResponse(inc))
	}
	return out
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	var opErr *e.OperationError
	switch {
	case errors.As(err, &opErr):
		l.Warn("operation failed", slog.Int("code", opErr.Code), slog.String("message", opErr.Message))
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"code": opErr.Code, "error": opErr.Message})
	case errors.Is(err, e.ErrInvalidInput):
		l.Warn("invalid input", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	default:
		l.Error("handler error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
