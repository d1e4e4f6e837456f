package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/guests"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/staff"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/config"
	"github.com/angelmondragon/hotelops-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
	"github.com/angelmondragon/hotelops-backend/pkg/metrics"
	"github.com/angelmondragon/hotelops-backend/pkg/outbox"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client := dbtest.Client(t)
	conn := client.DB()

	reg := prometheus.NewRegistry()
	m := metrics.NewOperationMetrics(reg)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	roomSvc, err := rooms.NewService(rooms.NewRepository(conn), client, logg)
	require.NoError(t, err)
	_, err = roomSvc.SeedGrid(ctx, 3, 5)
	require.NoError(t, err)
	guestSvc, err := guests.NewService(guests.NewRepository(conn))
	require.NoError(t, err)
	invSvc, err := inventory.NewService(inventory.NewRepository(conn), client, emitter, m)
	require.NoError(t, err)
	resSvc, err := reservations.NewService(reservations.NewRepository(conn), roomSvc)
	require.NoError(t, err)
	staffSvc, err := staff.NewService(staff.NewRepository(conn))
	require.NoError(t, err)
	taskSvc, err := tasks.NewService(tasks.NewRepository(conn), roomSvc, invSvc, tasks.NewMemoryStaging())
	require.NoError(t, err)
	coord, err := coordinator.New(coordinator.Params{
		Tx:           client,
		Rooms:        roomSvc,
		Guests:       guestSvc,
		Reservations: resSvc,
		Staff:        staffSvc,
		Tasks:        taskSvc,
		Inventory:    invSvc,
		Outbox:       emitter,
		Metrics:      m,
		Logger:       logg,
	})
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	return NewRouter(cfg, logg, client, nil, reg, coord, roomSvc, guestSvc, resSvc, staffSvc, taskSvc, invSvc)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "front-desk")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var env envelope
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	}
	return resp.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t)

	code, _ := call(t, h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, code)

	code, env := call(t, h, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, code)
	ready := decode[map[string]any](t, env)
	assert.Equal(t, "ready", ready["status"])
}

func TestCheckInFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/v1/guests", `{"name":"Ana Souza","document":"123.456.789-00"}`)
	require.Equal(t, http.StatusCreated, code)
	guest := decode[map[string]any](t, env)
	assert.Equal(t, "12345678900", guest["document"])

	code, env = call(t, h, http.MethodPost, "/api/v1/reservations",
		`{"guest_id":1,"room_number":"3-5","check_in_date":"2024-01-10","check_out_date":"2024-01-12","nightly_rate":"100"}`)
	require.Equal(t, http.StatusCreated, code)
	reservation := decode[map[string]any](t, env)
	assert.Equal(t, "200", reservation["total"])
	assert.EqualValues(t, 2, reservation["nights"])

	code, env = call(t, h, http.MethodGet, "/api/v1/rooms/3-5", "")
	require.Equal(t, http.StatusOK, code)
	room := decode[map[string]any](t, env)
	assert.Equal(t, "occupied", room["status"])

	code, env = call(t, h, http.MethodPost, "/api/v1/reservations",
		`{"guest_id":1,"room_number":"3-5","check_in_date":"2024-01-10","check_out_date":"2024-01-12","nightly_rate":"100"}`)
	require.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ROOM_UNAVAILABLE", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/api/v1/reservations?status=active", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	code, _ = call(t, h, http.MethodPost, "/api/v1/reservations/1/check-out", "")
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodGet, "/api/v1/guests/1/reservations", "")
	require.Equal(t, http.StatusOK, code)
	history := decode[map[string]any](t, env)
	assert.Len(t, history["reservations"], 1)
}

func TestTaskFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/v1/inventory", `{"name":"Soap","quantity":10,"unit_value":"2.50","min_threshold":2}`)
	require.Equal(t, http.StatusCreated, code)
	item := decode[map[string]any](t, env)
	assert.EqualValues(t, 10, item["quantity_on_hand"])

	code, env = call(t, h, http.MethodPost, "/api/v1/staff", `{"name":"Maria","role":"camareira"}`)
	require.Equal(t, http.StatusCreated, code)
	member := decode[map[string]any](t, env)
	assert.Equal(t, "active", member["status"])
	code, _ = call(t, h, http.MethodPost, "/api/v1/staff", `{"name":"Joao","role":"manutencao"}`)
	require.Equal(t, http.StatusCreated, code)

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks", `{"room_number":"1-1","assignee_id":1,"type":"clean","estimated":"00:30"}`)
	require.Equal(t, http.StatusCreated, code)
	task := decode[map[string]any](t, env)
	assert.EqualValues(t, 30, task["estimated_minutes"])
	assert.Equal(t, "Maria", task["assignee"])
	assert.EqualValues(t, 1, task["staff_id"])

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks", `{"room_number":"1-1","assignee_id":2,"type":"tidy","estimated":"20"}`)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, _ = call(t, h, http.MethodPost, "/api/v1/tasks/1/consumptions", `{"item_id":1,"quantity":2}`)
	require.Equal(t, http.StatusCreated, code)

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks/1/close", `{"actual":"00:45"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks/1/close", `{"actual":"00:45","notes":"delay"}`)
	require.Equal(t, http.StatusOK, code)
	closed := decode[map[string]any](t, env)
	assert.Len(t, closed["movements"], 1)

	code, env = call(t, h, http.MethodGet, "/api/v1/inventory/1", "")
	require.Equal(t, http.StatusOK, code)
	item = decode[map[string]any](t, env)
	assert.EqualValues(t, 8, item["quantity_on_hand"])

	code, env = call(t, h, http.MethodGet, "/api/v1/rooms/1-1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "free", decode[map[string]any](t, env)["status"])

	code, env = call(t, h, http.MethodGet, "/api/v1/audit", "")
	require.Equal(t, http.StatusOK, code)
	audit := decode[map[string]any](t, env)
	assert.Equal(t, true, audit["consistent"])
	assert.EqualValues(t, 15, audit["rooms"])
}

func TestStaffRegistryOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/v1/staff", `{"name":"Maria","role":"camareira"}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = call(t, h, http.MethodPost, "/api/v1/staff", `{"name":"Joao","role":"manutencao"}`)
	require.Equal(t, http.StatusCreated, code)
	code, env = call(t, h, http.MethodPost, "/api/v1/staff", `{"name":"Ana"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodPatch, "/api/v1/staff/2/status", `{"status":"desligado"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "inactive", decode[map[string]any](t, env)["status"])

	code, env = call(t, h, http.MethodGet, "/api/v1/staff?status=active", "")
	require.Equal(t, http.StatusOK, code)
	listed := decode[map[string]any](t, env)
	require.Len(t, listed["staff"], 1)
	assert.Equal(t, "Maria", listed["staff"].([]any)[0].(map[string]any)["name"])

	code, env = call(t, h, http.MethodGet, "/api/v1/staff/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "camareira", decode[map[string]any](t, env)["role"])

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks", `{"room_number":"2-2","assignee_id":2,"type":"clean","estimated":"30"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/api/v1/tasks", `{"room_number":"2-2","assignee_id":99,"type":"clean","estimated":"30"}`)
	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/api/v1/rooms/2-2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "free", decode[map[string]any](t, env)["status"])
}

func TestRoomStatusOverrideIsGated(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPatch, "/api/v1/rooms/2-2/status", `{"status":"occupied"}`)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = call(t, h, http.MethodPatch, "/api/v1/rooms/2-2/status", `{"status":"nope"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/api/v1/rooms/2-2/audit", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, decode[map[string]any](t, env)["consistent"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	call(t, h, http.MethodPatch, "/api/v1/rooms/1-1/status", `{"status":"occupied"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `hotelops_operation_total{operation="set_room_status",outcome="CONFLICT"} 1`)
}
