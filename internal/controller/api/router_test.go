package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/handler"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/middleware"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
	"github.com/Freeeeeet/tutor_market/internal/schedule"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

const testSecret = "test-secret"

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	adapter := httpcontext.NewAdapter(time.Second)

	handlers := Handlers{
		Task:         handler.NewTaskHandler(service.NewTaskService(store, nil, logger), adapter, logger),
		Application:  handler.NewApplicationHandler(service.NewApplicationService(store, logger), adapter, logger),
		Availability: handler.NewAvailabilityHandler(service.NewAvailabilityService(store, schedule.NewGenerator(0, 0), logger), adapter, logger),
		Appointment:  handler.NewAppointmentHandler(service.NewAppointmentService(store, logger), adapter, logger),
		User:         handler.NewUserHandler(service.NewUserService(store, nil, logger), adapter, logger),
		Health:       handler.NewHealthHandler(store, adapter, logger),
	}

	r := NewRouter(handlers, middleware.JWTAuth(testSecret, logger))
	return &testServer{t: t, handler: Handler(r, logger), store: store}
}

func token(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	return sign(t, middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

func sign(t *testing.T, claims middleware.Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(method, path, bearer, body string) (int, envelope, *fasthttp.Response) {
	s.t.Helper()

	authorization := ""
	if bearer != "" {
		authorization = "Bearer " + bearer
	}
	return s.doRaw(method, path, authorization, body)
}

// doRaw отправляет заголовок Authorization как есть
func (s *testServer) doRaw(method, path, authorization, body string) (int, envelope, *fasthttp.Response) {
	s.t.Helper()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(req, nil, nil)
	s.handler(&ctx)

	resp := &fasthttp.Response{}
	ctx.Response.CopyTo(resp)

	var env envelope
	if ct := string(resp.Header.ContentType()); ct == "application/json" && len(resp.Body()) > 0 {
		require.NoError(s.t, json.Unmarshal(resp.Body(), &env), string(resp.Body()))
	}
	return resp.StatusCode(), env, resp
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

const (
	student   int64 = 100
	student2  int64 = 101
	tutorOne  int64 = 200
	tutorTwo  int64 = 201
	taskInput       = `{"title":"Algebra","subject":"Math","lat":10,"lng":10,"budget":"25.50","status":"Completed","deadline":"2026-04-01T18:00"}`
)

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	status, env, _ := s.do("POST", "/tasks", "", taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, _, _ = s.do("POST", "/tasks", "garbage", taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, env, _ = s.do("POST", "/tasks", token(t, tutorOne, model.RoleTutor), taskInput)
	assert.Equal(t, fasthttp.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", env.Code)
}

func TestAuth_RejectsUnsafeTokens(t *testing.T) {
	s := newTestServer(t)
	valid := token(t, student, model.RoleStudent)

	// без схемы Bearer
	status, env, _ := s.doRaw("POST", "/tasks", valid, taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, _, _ = s.doRaw("POST", "/tasks", "Basic "+valid, taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	// без exp
	forever := sign(t, middleware.Claims{
		Role:             model.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(student, 10)},
	})
	status, env, _ = s.do("POST", "/tasks", forever, taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "token has no expiration", env.Error)

	expired := sign(t, middleware.Claims{
		Role: model.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(student, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	status, _, _ = s.do("POST", "/tasks", expired, taskInput)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, _, _ = s.doRaw("POST", "/tasks", "Bearer "+valid, taskInput)
	assert.Equal(t, fasthttp.StatusCreated, status)
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := token(t, student, model.RoleStudent)

	status, env, _ := s.do("POST", "/tasks", owner, taskInput)
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	task := decodeData[model.Task](t, env)
	assert.Equal(t, model.TaskStatusOpen, task.Status)
	assert.Equal(t, student, task.OwnerID)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, "25.5", task.Budget.String())

	status, env, _ = s.do("GET", fmt.Sprintf("/tasks/%d", task.ID), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, task.Title, decodeData[model.Task](t, env).Title)

	status, env, _ = s.do("GET", "/tasks/9999", "", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, _, _ = s.do("GET", "/tasks/abc", "", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _, _ = s.do("GET", "/tasks/search?north=20&south=0", "", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, env, _ = s.do("GET", "/tasks/search?north=20&south=0&east=20&west=0&subject=ma", "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Len(t, decodeData[[]model.Task](t, env), 1)

	status, env, _ = s.do("GET", "/tasks/search?north=5&south=0&east=5&west=0", "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))

	status, env, _ = s.do("GET", "/tasks/my_tasks", owner, "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Len(t, decodeData[[]model.Task](t, env), 1)

	path := fmt.Sprintf("/tasks/%d/status", task.ID)

	status, env, _ = s.do("PATCH", path, owner, `{"status":"Completed"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", env.Code)

	status, _, _ = s.do("PATCH", path, token(t, student2, model.RoleStudent), `{"status":"InProgress","tutor_id":200}`)
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, env, _ = s.do("PATCH", path, owner, `{"status":"InProgress"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Code)

	status, env, _ = s.do("PATCH", path, owner, `{"status":"InProgress","tutor_id":200}`)
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"status":"InProgress","tutor_id":200}`, task.ID), string(env.Data))

	status, _, _ = s.do("DELETE", fmt.Sprintf("/tasks/%d", task.ID), owner, "")
	assert.Equal(t, fasthttp.StatusConflict, status)

	status, _, _ = s.do("PATCH", path, owner, `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestApplicationEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := token(t, student, model.RoleStudent)
	tutor1 := token(t, tutorOne, model.RoleTutor)
	tutor2 := token(t, tutorTwo, model.RoleTutor)

	_, env, _ := s.do("POST", "/tasks", owner, taskInput)
	task := decodeData[model.Task](t, env)

	body := fmt.Sprintf(`{"task_id":%d,"message":"hi","bid_amount":"30.00"}`, task.ID)

	status, env, _ := s.do("POST", "/task_applications", tutor1, body)
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	first := decodeData[model.TaskApplication](t, env)

	status, env, _ = s.do("POST", "/task_applications", tutor1, body)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)

	status, _, _ = s.do("POST", "/task_applications", tutor2, fmt.Sprintf(`{"task_id":%d}`, task.ID))
	require.Equal(t, fasthttp.StatusCreated, status)

	status, _, _ = s.do("POST", "/task_applications", tutor2, `{"task_id":9999}`)
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, env, _ = s.do("GET", fmt.Sprintf("/tasks/%d/applications", task.ID), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	apps := decodeData[[]map[string]any](t, env)
	require.Len(t, apps, 2)
	assert.Contains(t, apps[0], "tutor_name")
	assert.Equal(t, "30", apps[0]["bid_amount"])
	assert.Nil(t, apps[1]["bid_amount"])

	decision := fmt.Sprintf("/tasks/applications/%d/decision", first.ID)

	status, _, _ = s.do("POST", decision, tutor2, `{"decision":"accept"}`)
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, _, _ = s.do("POST", decision, owner, `{"decision":"maybe"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, env, _ = s.do("POST", decision, owner, `{"decision":"accept"}`)
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	assert.Equal(t, model.ApplicationStatusAccepted, decodeData[model.TaskApplication](t, env).Status)

	status, env, _ = s.do("POST", decision, owner, `{"decision":"accept"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)

	status, env, _ = s.do("GET", "/my_applications", tutor2, "")
	require.Equal(t, fasthttp.StatusOK, status)
	mine := decodeData[[]map[string]any](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, "rejected", mine[0]["status"])
	assert.Equal(t, "Algebra", mine[0]["task_title"])
	assert.Equal(t, "InProgress", mine[0]["task_status"])
}

func TestAvailabilityAndAppointmentEndpoints(t *testing.T) {
	s := newTestServer(t)
	tutor1 := token(t, tutorOne, model.RoleTutor)
	learner := token(t, student, model.RoleStudent)

	status, env, _ := s.do("POST", "/availability", tutor1, `{"subject":"Math","start_time":"2026-03-02T09:00","end_time":"2026-03-02T10:00"}`)
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	slots := decodeData[[]model.AvailableSlot](t, env)
	require.Len(t, slots, 4)

	status, env, _ = s.do("POST", "/availability", tutor1, `{"subject":"Math","start_time":"2026-03-02T09:00","end_time":"2026-03-02T09:10"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	assert.Equal(t, "[]", string(env.Data))

	status, _, _ = s.do("POST", "/availability", tutor1, `{"start_time":"2026-03-02T10:00","end_time":"2026-03-02T09:00"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _, _ = s.do("POST", "/availability", tutor1, `{"start_time":"next monday","end_time":"2026-03-02T09:00"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	apptBody := fmt.Sprintf(`{"slot_id":%d,"tutor_id":%d,"message":"hello"}`, slots[0].ID, tutorOne)

	status, env, _ = s.do("POST", "/appointments", learner, apptBody)
	require.Equal(t, fasthttp.StatusCreated, status, env.Error)
	appt := decodeData[model.Appointment](t, env)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)

	status, _, _ = s.do("POST", "/appointments", token(t, student2, model.RoleStudent), apptBody)
	assert.Equal(t, fasthttp.StatusConflict, status)

	status, env, _ = s.do("GET", fmt.Sprintf("/availability/tutor/%d", tutorOne), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	listed := decodeData[[]model.AvailableSlot](t, env)
	require.Len(t, listed, 4)
	assert.True(t, listed[0].IsBooked)
	assert.False(t, listed[1].IsBooked)

	status, _, _ = s.do("DELETE", fmt.Sprintf("/availability/%d", slots[0].ID), tutor1, "")
	assert.Equal(t, fasthttp.StatusConflict, status)

	status, _, _ = s.do("PATCH", fmt.Sprintf("/appointments/%d/status", appt.ID), tutor1, `{"status":"pending"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _, _ = s.do("POST", fmt.Sprintf("/appointments/%d/accept", appt.ID), token(t, tutorTwo, model.RoleTutor), "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, env, _ = s.do("PATCH", fmt.Sprintf("/appointments/%d/status", appt.ID), tutor1, `{"status":"accepted"}`)
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	assert.Equal(t, model.AppointmentStatusAccepted, decodeData[model.Appointment](t, env).Status)

	status, env, _ = s.do("POST", fmt.Sprintf("/appointments/%d/reject", appt.ID), tutor1, "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, model.AppointmentStatusAccepted, decodeData[model.Appointment](t, env).Status)

	status, _, _ = s.do("DELETE", fmt.Sprintf("/availability/%d", slots[1].ID), tutor1, "")
	assert.Equal(t, fasthttp.StatusNoContent, status)

	status, env, _ = s.do("GET", fmt.Sprintf("/appointments/tutor/%d", tutorOne), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Len(t, decodeData[[]model.Appointment](t, env), 1)

	status, env, _ = s.do("GET", fmt.Sprintf("/appointments/student/%d", student), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Len(t, decodeData[[]model.Appointment](t, env), 1)

	status, _, resp := s.do("GET", fmt.Sprintf("/availability/tutor/%d/calendar.ics", tutorOne), "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(resp.Header.ContentType()), "text/calendar")
	assert.Contains(t, string(resp.Body()), "BEGIN:VCALENDAR")
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	status, env, resp := s.do("GET", "/health", "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, resp.Header.Peek(httpcontext.HeaderRequestID))
}

func TestProfileAndTutorEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tg := int64(777)
	tutor := &model.User{Email: "tutor@example.com", Role: model.RoleTutor, FirstName: "Ada", TelegramID: &tg}
	pupil := &model.User{Email: "pupil@example.com", Role: model.RoleStudent}
	require.NoError(t, s.store.Users().Create(ctx, tutor))
	require.NoError(t, s.store.Users().Create(ctx, pupil))
	own := token(t, tutor.ID, model.RoleTutor)
	profilePath := fmt.Sprintf("/profiles/%d", tutor.ID)

	status, env, _ := s.do("PUT", profilePath, own, `{"subjects":"Math, Physics","lat":1}`)
	require.Equal(t, fasthttp.StatusOK, status, env.Error)

	// координаты задаются только через адрес
	status, env, _ = s.do("PUT", profilePath, own, `{"hourly_rate":"40.125"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Code)

	status, env, _ = s.do("PUT", profilePath, token(t, pupil.ID, model.RoleStudent), `{"bio":"hijack"}`)
	assert.Equal(t, fasthttp.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", env.Code)

	status, _, _ = s.do("PUT", profilePath, "", `{"bio":"x"}`)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, env, _ = s.do("GET", profilePath, "", "")
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	public := decodeData[map[string]any](t, env)
	assert.Equal(t, "Math, Physics", public["subjects"])
	assert.Equal(t, 0.0, public["lat"])
	assert.NotContains(t, public, "email")
	assert.NotContains(t, public, "telegram_id")

	status, env, _ = s.do("GET", "/tutors/search?north=10&south=-10&east=10&west=-10&subject=physics", "", "")
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	found := decodeData[[]map[string]any](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, float64(tutor.ID), found[0]["id"])

	status, env, _ = s.do("GET", "/tutors/search?north=10&south=-10&east=10&west=-10&subject=chemistry", "", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, _, _ = s.do("GET", "/tutors/search?north=10&south=-10&east=10", "", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, env, _ = s.do("GET", fmt.Sprintf("/tutors/%d", tutor.ID), "", "")
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	assert.Equal(t, "Ada", decodeData[map[string]any](t, env)["first_name"])

	status, env, _ = s.do("GET", fmt.Sprintf("/tutors/%d", pupil.ID), "", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "tutor not found", env.Error)

	status, env, _ = s.do("GET", "/users/me", own, "")
	require.Equal(t, fasthttp.StatusOK, status, env.Error)
	me := decodeData[model.User](t, env)
	assert.Equal(t, "tutor@example.com", me.Email)
	assert.Equal(t, "Math, Physics", me.Subjects)
}
