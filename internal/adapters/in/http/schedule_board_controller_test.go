package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
)

type mutationCall struct {
	op   string
	args []interface{}
}

type fakeUseCase struct {
	snapshot domain.BoardSnapshot
	schedule map[domain.CellKey]domain.ScheduleEntry
	blocked  bool
	calls    []mutationCall
}

func (f *fakeUseCase) Initialize(ctx context.Context) error { return nil }
func (f *fakeUseCase) Stop()                                {}

func (f *fakeUseCase) Snapshot() domain.BoardSnapshot { return f.snapshot }

func (f *fakeUseCase) Schedule() map[domain.CellKey]domain.ScheduleEntry { return f.schedule }

func (f *fakeUseCase) IsBlocked(day string, room int, timeLabel string) bool { return f.blocked }

func (f *fakeUseCase) RenameDoctor(ctx context.Context, doctorID, name string) {
	f.calls = append(f.calls, mutationCall{op: "rename", args: []interface{}{doctorID, name}})
}

func (f *fakeUseCase) SetSlotField(ctx context.Context, doctorID string, slotIndex int, field, value string) {
	f.calls = append(f.calls, mutationCall{op: "set_field", args: []interface{}{doctorID, slotIndex, field, value}})
}

func (f *fakeUseCase) SetSlotStatus(ctx context.Context, doctorID string, slotIndex int, status domain.SlotStatus) {
	f.calls = append(f.calls, mutationCall{op: "set_status", args: []interface{}{doctorID, slotIndex, status}})
}

func (f *fakeUseCase) SetSlotStartDate(ctx context.Context, doctorID string, slotIndex int, startDate string) {
	f.calls = append(f.calls, mutationCall{op: "set_start_date", args: []interface{}{doctorID, slotIndex, startDate}})
}

func (f *fakeUseCase) MoveSlot(ctx context.Context, doctorID string, slotIndex int, day, timeLabel string, room int) {
	f.calls = append(f.calls, mutationCall{op: "move", args: []interface{}{doctorID, slotIndex, day, timeLabel, room}})
}

func (f *fakeUseCase) ToggleOutpatientBlock(ctx context.Context, day string, room int, timeLabel string) {
	f.calls = append(f.calls, mutationCall{op: "toggle_block", args: []interface{}{day, room, timeLabel}})
}

func newTestRouter(useCase *fakeUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Auth.Username = "board"
	cfg.Auth.Password = "secret"

	router := gin.New()
	NewScheduleBoardController(useCase, cfg).RegisterRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.SetBasicAuth("board", "secret")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuth_Rejected(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	rec := doRequest(router, http.MethodGet, "/api/v1/board", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/board", nil)
	req.SetBasicAuth("board", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong password, got %d", rec.Code)
	}
}

func TestGetBoard(t *testing.T) {
	useCase := &fakeUseCase{
		snapshot: domain.BoardSnapshot{
			Doctors: []domain.Doctor{
				{
					ID:   "doctor-1",
					Name: "Doctor 1",
					Slots: []domain.Slot{
						{ID: "d1-s1", Type: domain.TherapyCBT, Status: domain.SlotStatusAssignable},
					},
				},
			},
			OutpatientSlots: []domain.CellKey{"mon-10-08:30"},
			Version:         7,
		},
	}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodGet, "/api/v1/board", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Doctors         []domain.Doctor                   `json:"doctors"`
		OutpatientSlots []string                          `json:"outpatientSlots"`
		Version         uint64                            `json:"version"`
		Sessions        map[string]domain.SessionProgress `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected valid json, got %v", err)
	}

	if body.Version != 7 || len(body.Doctors) != 1 {
		t.Errorf("Expected version 7 with 1 doctor, got %d/%d", body.Version, len(body.Doctors))
	}
	progress, ok := body.Sessions["d1-s1"]
	if !ok {
		t.Fatal("Expected session progress for d1-s1")
	}
	if progress.State != domain.SessionNotApplicable {
		t.Errorf("Expected not_applicable for assignable slot, got %s", progress.State)
	}
}

func TestGetCatalog(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	rec := doRequest(router, http.MethodGet, "/api/v1/board/catalog", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		TherapyTypes []string `json:"therapyTypes"`
		Rooms        []int    `json:"rooms"`
		AllSlots     []string `json:"allSlots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected valid json, got %v", err)
	}
	if len(body.TherapyTypes) != 5 || len(body.Rooms) != 4 || len(body.AllSlots) != 7 {
		t.Errorf("Expected 5 types, 4 rooms, 7 time slots, got %d/%d/%d",
			len(body.TherapyTypes), len(body.Rooms), len(body.AllSlots))
	}
}

func TestGetBlocked(t *testing.T) {
	useCase := &fakeUseCase{blocked: true}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodGet, "/api/v1/board/blocked?day=mon&room=10&time=08:30", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"blocked":true`) {
		t.Errorf("Expected blocked true, got %s", rec.Body.String())
	}

	rec = doRequest(router, http.MethodGet, "/api/v1/board/blocked?day=mon&room=abc&time=08:30", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad room, got %d", rec.Code)
	}
}

func TestRenameDoctorRoute(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPut, "/api/v1/doctors/doctor-1/name", `{"name":"Dr. Petrova"}`, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	if len(useCase.calls) != 1 || useCase.calls[0].op != "rename" {
		t.Fatalf("Expected single rename call, got %+v", useCase.calls)
	}
	if useCase.calls[0].args[0] != "doctor-1" || useCase.calls[0].args[1] != "Dr. Petrova" {
		t.Errorf("Expected doctor-1/Dr. Petrova, got %v", useCase.calls[0].args)
	}
}

func TestSetSlotStatusRoute_InvalidStatus(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPut, "/api/v1/doctors/doctor-1/slots/0/status", `{"status":"Broken"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", rec.Code)
	}
	if len(useCase.calls) != 0 {
		t.Errorf("Expected no use case calls, got %+v", useCase.calls)
	}
}

func TestSetSlotFieldRoute_ValueOutsideCatalog(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"UnknownType", `{"field":"type","value":"XXX"}`, http.StatusBadRequest},
		{"UnknownDay", `{"field":"day","value":"sat"}`, http.StatusBadRequest},
		{"UnknownTime", `{"field":"time","value":"23:00"}`, http.StatusBadRequest},
		{"UnknownRoom", `{"field":"room","value":"99"}`, http.StatusBadRequest},
		{"UnknownField", `{"field":"color","value":"red"}`, http.StatusBadRequest},
		{"ValidDay", `{"field":"day","value":"mon"}`, http.StatusNoContent},
		{"EmptyDayClears", `{"field":"day","value":""}`, http.StatusNoContent},
		{"EmptyRoomClears", `{"field":"room","value":""}`, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPut, "/api/v1/doctors/doctor-1/slots/0/field", tt.body, true)
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestMoveSlotRoute_CellOutsideCatalog(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPost, "/api/v1/doctors/doctor-1/slots/0/move",
		`{"day":"fri","time":"14:30","room":99}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown room, got %d", rec.Code)
	}
	if len(useCase.calls) != 0 {
		t.Errorf("Expected no use case calls, got %+v", useCase.calls)
	}
}

func TestToggleBlockRoute_CellOutsideCatalog(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPost, "/api/v1/blocks/toggle",
		`{"day":"sun","room":10,"time":"08:30"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown day, got %d", rec.Code)
	}
	if len(useCase.calls) != 0 {
		t.Errorf("Expected no use case calls, got %+v", useCase.calls)
	}
}

func TestSetSlotFieldRoute_BadSlotIndex(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPut, "/api/v1/doctors/doctor-1/slots/abc/field", `{"field":"day","value":"mon"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric slot index, got %d", rec.Code)
	}
}

func TestMoveSlotRoute(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPost, "/api/v1/doctors/doctor-2/slots/1/move",
		`{"day":"fri","time":"14:30","room":13}`, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	if len(useCase.calls) != 1 || useCase.calls[0].op != "move" {
		t.Fatalf("Expected single move call, got %+v", useCase.calls)
	}
	args := useCase.calls[0].args
	if args[0] != "doctor-2" || args[1] != 1 || args[2] != "fri" || args[3] != "14:30" || args[4] != 13 {
		t.Errorf("Expected doctor-2/1/fri/14:30/13, got %v", args)
	}
}

func TestToggleBlockRoute(t *testing.T) {
	useCase := &fakeUseCase{}
	router := newTestRouter(useCase)

	rec := doRequest(router, http.MethodPost, "/api/v1/blocks/toggle",
		`{"day":"mon","room":10,"time":"08:30"}`, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	if len(useCase.calls) != 1 || useCase.calls[0].op != "toggle_block" {
		t.Fatalf("Expected single toggle call, got %+v", useCase.calls)
	}
}
