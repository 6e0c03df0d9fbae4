package admin_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/golang/mock/gomock"

	"incidentService/internal/api/handlers/http/admin"
	mock_admin "incidentService/internal/api/handlers/http/admin/mocks"
	"incidentService/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

type listResponse struct {
	Commands []domain.DroppedCommand `json:"commands"`
	Count    int                     `json:"count"`
	Limit    int                     `json:"limit"`
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) listResponse {
	t.Helper()
	var out listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

func TestDroppedCommandList_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dropped := mock_admin.NewMockDroppedCommands(ctrl)
	h := admin.NewHandler(newTestLogger(), dropped)

	cmd := domain.DroppedCommand{
		Stream:    "incident-command:0",
		RecordID:  "1-0",
		Key:       "inc-1",
		Payload:   `{"broken"`,
		Reason:    "db down",
		DroppedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	dropped.EXPECT().List(gomock.Any(), int64(10)).Return([]domain.DroppedCommand{cmd}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dropped-commands?limit=10", nil)
	rr := httptest.NewRecorder()

	h.DroppedCommandList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	got := decodeList(t, rr)
	if got.Count != 1 || got.Limit != 10 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.Commands[0].Key != "inc-1" || got.Commands[0].Reason != "db down" {
		t.Fatalf("unexpected command: %+v", got.Commands[0])
	}
}

func TestDroppedCommandList_LimitDefaultsAndCap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		query string
		want  int64
	}{
		{"missing", "", 50},
		{"garbage", "?limit=abc", 50},
		{"negative", "?limit=-3", 50},
		{"capped", "?limit=100000", 500},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			dropped := mock_admin.NewMockDroppedCommands(ctrl)
			h := admin.NewHandler(newTestLogger(), dropped)

			dropped.EXPECT().List(gomock.Any(), tc.want).Return(nil, nil)

			rr := httptest.NewRecorder()
			h.DroppedCommandList(rr, httptest.NewRequest(http.MethodGet, "/admin/dropped-commands"+tc.query, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			got := decodeList(t, rr)
			if got.Commands == nil || len(got.Commands) != 0 {
				t.Fatalf("expected empty array, got %s", rr.Body.String())
			}
		})
	}
}

func TestDroppedCommandList_Error(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dropped := mock_admin.NewMockDroppedCommands(ctrl)
	h := admin.NewHandler(newTestLogger(), dropped)

	dropped.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	rr := httptest.NewRecorder()
	h.DroppedCommandList(rr, httptest.NewRequest(http.MethodGet, "/admin/dropped-commands", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
