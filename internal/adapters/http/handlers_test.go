package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nextask/core/internal/adapters/notify"
	"github.com/nextask/core/internal/adapters/repository"
	"github.com/nextask/core/internal/adapters/store"
	"github.com/nextask/core/internal/application/services"
	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/config"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

type handlerEnv struct {
	auth  *AuthHandler
	tasks *TaskHandler
	store ports.TaskStore
	svc   *services.AuthService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	nop := logger.NewNop()

	repo, err := repository.NewLocalStore(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	notifier := notify.NewMemoryNotifier()
	t.Cleanup(func() { notifier.Close() })

	taskStore := store.New(repo, notifier, nop)
	taskService := services.NewTaskService(taskStore, nop)

	authService := services.NewAuthService(
		repository.NewMemoryUserRepository(),
		repository.NewMemoryAuthRepository(),
		config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, RefreshExpiresIn: 24 * time.Hour, Issuer: "test"},
		nop,
	)

	return &handlerEnv{
		auth:  NewAuthHandler(authService, nop),
		tasks: NewTaskHandler(taskService, taskStore, nop),
		store: taskStore,
		svc:   authService,
	}
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body string, userID uuid.UUID, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set("user", userID.String())
	}
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}

	err := handler(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func registerAndLogin(t *testing.T, env *handlerEnv, email string) uuid.UUID {
	t.Helper()

	body := `{"email":"` + email + `","password":"secret1","confirm_password":"secret1"}`
	rec := doJSON(t, env.auth.Register, http.MethodPost, "/api/v1/auth/register", body, uuid.Nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp ports.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.User.ID
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bad email", body: `{"email":"nope","password":"secret1","confirm_password":"secret1"}`, want: http.StatusBadRequest},
		{name: "short password", body: `{"email":"a@b.co","password":"five5","confirm_password":"five5"}`, want: http.StatusBadRequest},
		{name: "mismatch", body: `{"email":"a@b.co","password":"secret1","confirm_password":"secret2"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, env.auth.Register, http.MethodPost, "/api/v1/auth/register", tt.body, uuid.Nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthHandlersRejectMissingFields(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		body    string
	}{
		{name: "register empty body", handler: env.auth.Register, body: `{}`},
		{name: "register missing confirmation", handler: env.auth.Register, body: `{"email":"a@b.co","password":"secret1"}`},
		{name: "login empty body", handler: env.auth.Login, body: `{}`},
		{name: "login missing password", handler: env.auth.Login, body: `{"email":"a@b.co"}`},
		{name: "refresh empty body", handler: env.auth.RefreshToken, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, tt.handler, http.MethodPost, "/api/v1/auth", tt.body, uuid.Nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newHandlerEnv(t)
	registerAndLogin(t, env, "user@example.com")

	body := `{"email":"user@example.com","password":"secret1","confirm_password":"secret1"}`
	rec := doJSON(t, env.auth.Register, http.MethodPost, "/api/v1/auth/register", body, uuid.Nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
}

func TestLoginErrorMessages(t *testing.T) {
	env := newHandlerEnv(t)
	registerAndLogin(t, env, "user@example.com")

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unknown account",
			body:        `{"email":"other@example.com","password":"secret1"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Account not found",
		},
		{
			name:        "wrong password",
			body:        `{"email":"user@example.com","password":"not-it"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Incorrect password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, env.auth.Login, http.MethodPost, "/api/v1/auth/login", tt.body, uuid.Nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMessage) {
				t.Errorf("body %q does not carry %q", rec.Body.String(), tt.wantMessage)
			}
		})
	}
}

func TestCreateAndListTasks(t *testing.T) {
	env := newHandlerEnv(t)
	owner := registerAndLogin(t, env, "user@example.com")

	rec := doJSON(t, env.tasks.CreateTask, http.MethodPost, "/api/v1/tasks", `{"text":"buy milk"}`, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var created CreateTaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("create returned uuid.Nil")
	}

	rec = doJSON(t, env.tasks.ListTasks, http.MethodGet, "/api/v1/tasks", "", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var list TaskListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].Text != "buy milk" {
		t.Fatalf("list = %+v", list.Tasks)
	}
	if list.Filter != "all" {
		t.Errorf("default filter = %q, want all", list.Filter)
	}
}

func TestCreateTaskBlankTextIsNoContent(t *testing.T) {
	env := newHandlerEnv(t)
	owner := registerAndLogin(t, env, "user@example.com")

	rec := doJSON(t, env.tasks.CreateTask, http.MethodPost, "/api/v1/tasks", `{"text":"   "}`, owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("blank create status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	tasks, err := env.store.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("blank create stored %d tasks", len(tasks))
	}
}

func TestListTasksRejectsUnknownFilter(t *testing.T) {
	env := newHandlerEnv(t)
	owner := registerAndLogin(t, env, "user@example.com")

	rec := doJSON(t, env.tasks.ListTasks, http.MethodGet, "/api/v1/tasks?filter=overdue", "", owner)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown filter status = %d", rec.Code)
	}
}

func TestToggleUpdateDelete(t *testing.T) {
	env := newHandlerEnv(t)
	owner := registerAndLogin(t, env, "user@example.com")
	ctx := context.Background()

	rec := doJSON(t, env.tasks.CreateTask, http.MethodPost, "/api/v1/tasks", `{"text":"cycle"}`, owner)
	var created CreateTaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created.ID.String()

	rec = doJSON(t, env.tasks.ToggleTask, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", "", owner, "id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", rec.Code, rec.Body.String())
	}
	task, err := env.store.Get(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !task.Completed {
		t.Fatal("task not completed after toggle")
	}

	rec = doJSON(t, env.tasks.UpdateTask, http.MethodPut, "/api/v1/tasks/"+id, `{"text":"edited"}`, owner, "id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	task, _ = env.store.Get(ctx, owner, created.ID)
	if task.Text != "edited" {
		t.Fatalf("text after update = %q", task.Text)
	}
	if !task.Completed {
		t.Fatal("update reset the completed flag")
	}

	rec = doJSON(t, env.tasks.DeleteTask, http.MethodDelete, "/api/v1/tasks/"+id, "", owner, "id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if _, err := env.store.Get(ctx, owner, created.ID); err == nil {
		t.Fatal("task still present after delete")
	}
}

func TestTaskRoutesAreOwnerScoped(t *testing.T) {
	env := newHandlerEnv(t)
	alice := registerAndLogin(t, env, "alice@example.com")
	bob := registerAndLogin(t, env, "bob@example.com")

	rec := doJSON(t, env.tasks.CreateTask, http.MethodPost, "/api/v1/tasks", `{"text":"alice's"}`, alice)
	var created CreateTaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created.ID.String()

	rec = doJSON(t, env.tasks.ToggleTask, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", "", bob, "id", id)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner toggle status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, env.tasks.DeleteTask, http.MethodDelete, "/api/v1/tasks/"+id, "", bob, "id", id)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, env.tasks.ListTasks, http.MethodGet, "/api/v1/tasks", "", bob)
	var list TaskListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Tasks) != 0 {
		t.Fatalf("bob sees %d of alice's tasks", len(list.Tasks))
	}
}

func TestStreamTasksSendsSnapshotEvents(t *testing.T) {
	env := newHandlerEnv(t)
	owner := registerAndLogin(t, env, "user@example.com")
	ctx := context.Background()

	if _, err := env.store.Create(ctx, &entities.Task{OwnerID: owner, Text: "streamed"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	e := echo.New()
	reqCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/stream", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", owner.String())

	if err := env.tasks.StreamTasks(c); err != nil {
		t.Fatalf("StreamTasks returned %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: snapshot") {
		t.Fatalf("stream body missing snapshot event: %q", body)
	}
	if !strings.Contains(body, "streamed") {
		t.Fatalf("stream body missing task payload: %q", body)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}
