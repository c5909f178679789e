package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api"
	"github.com/tasktracker/task-api/internal/api/handler"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/service"
	"github.com/tasktracker/task-api/internal/infrastructure/config"
)

// ---------------------------------------------------------------------------
// In-memory adapters standing in for MongoDB and Redis
// ---------------------------------------------------------------------------

type memUsers struct {
	mu    sync.Mutex
	seq   int
	users []*domain.User
}

func (r *memUsers) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *user
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users = append(r.users, &stored)
	clone := stored
	return &clone, nil
}

type memTasks struct {
	mu    sync.Mutex
	seq   int
	order []string
	tasks map[string]*domain.Task
}

func (r *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *t
	stored.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	clone := stored
	return &clone, nil
}

func (r *memTasks) ListByOwner(_ context.Context, ownerID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok && t.UserID == ownerID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memTasks) lookup(ownerID, taskID string) (*domain.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (r *memTasks) FindByID(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.lookup(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	clone := *t
	return &clone, nil
}

func (r *memTasks) UpdateStatus(_ context.Context, ownerID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.lookup(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	clone := *t
	return &clone, nil
}

func (r *memTasks) Delete(_ context.Context, ownerID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookup(ownerID, taskID); err != nil {
		return err
	}
	delete(r.tasks, taskID)
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []domain.TaskActivity
}

func (r *memActivity) Insert(_ context.Context, a *domain.TaskActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}

func (r *memActivity) ListByTask(_ context.Context, ownerID, taskID string) ([]*domain.TaskActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TaskActivity
	for i := range r.entries {
		if e := r.entries[i]; e.TaskID == taskID && e.UserID == ownerID {
			out = append(out, &e)
		}
	}
	return out, nil
}

// Record writes synchronously so activity is visible to the next request.
func (r *memActivity) Record(a domain.TaskActivity) {
	_ = r.Insert(context.Background(), &a)
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *memRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = ttl
	return nil
}

func (r *memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens := service.NewTokenManager(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour})
	revocations := &memRevocations{revoked: map[string]time.Duration{}}
	activity := &memActivity{}

	e := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(&memUsers{}, tokens, revocations, zerolog.Nop()),
		Tasks:    service.NewTaskService(&memTasks{tasks: map[string]*domain.Task{}}, activity, activity, zerolog.Nop()),
		Verifier: tokens,
		Revoker:  revocations,
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		},
		AllowedOrigins: []string{"*"},
		Logger:         zerolog.Nop(),
		Registry:       prometheus.NewRegistry(),
	})
	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) &&
		strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, out
}

func (a *testAPI) register(username string) string {
	a.t.Helper()
	rec, body := a.do(http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"secret1"}`, username, username))
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		a.t.Fatalf("register %s: no token in %v", username, body)
	}
	return token
}

func (a *testAPI) createTask(token, body string) string {
	a.t.Helper()
	rec, task := a.do(http.MethodPost, "/api/tasks", token, body)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create task: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	return task["id"].(string)
}

// ---------------------------------------------------------------------------
// Flows
// ---------------------------------------------------------------------------

func TestRouter_RegisterCreateDeleteFlow(t *testing.T) {
	a := newTestAPI(t)
	token := a.register("alice")

	rec, task := a.do(http.MethodPost, "/api/tasks", token, `{"title":"buy milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if task["status"] != "pending" || task["priority"] != "medium" || task["title"] != "buy milk" {
		t.Fatalf("unexpected task: %v", task)
	}
	id := task["id"].(string)

	rec, got := a.do(http.MethodGet, "/api/tasks/"+id, token, "")
	if rec.Code != http.StatusOK || got["title"] != "buy milk" || got["userId"] != task["userId"] {
		t.Fatalf("get after create: %d %v", rec.Code, got)
	}

	rec, body := a.do(http.MethodDelete, "/api/tasks/"+id, token, "")
	if rec.Code != http.StatusOK || body["message"] != "Task deleted successfully" {
		t.Fatalf("delete: %d %v", rec.Code, body)
	}

	rec, body = a.do(http.MethodGet, "/api/tasks/"+id, token, "")
	if rec.Code != http.StatusNotFound || body["message"] != "Task not found" {
		t.Fatalf("get after delete: %d %v", rec.Code, body)
	}
}

func TestRouter_DuplicateRegistrationAndLogin(t *testing.T) {
	a := newTestAPI(t)
	a.register("alice")

	rec, body := a.do(http.MethodPost, "/api/auth/register", "",
		`{"username":"alice2","email":"alice@example.com","password":"secret1"}`)
	if rec.Code != http.StatusBadRequest || body["message"] != "User already exists" {
		t.Fatalf("duplicate email: %d %v", rec.Code, body)
	}

	rec, body = a.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized || body["message"] != "Invalid credentials" {
		t.Fatalf("wrong password: %d %v", rec.Code, body)
	}

	rec, body = a.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK || body["token"] == "" {
		t.Fatalf("login: %d %v", rec.Code, body)
	}
}

func TestRouter_TasksAreScopedToOwner(t *testing.T) {
	a := newTestAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	id := a.createTask(alice, `{"title":"alice only"}`)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/tasks/" + id, ""},
		{http.MethodPatch, "/api/tasks/" + id, `{"status":"completed"}`},
		{http.MethodDelete, "/api/tasks/" + id, ""},
		{http.MethodGet, "/api/tasks/" + id + "/activity", ""},
	} {
		if rec, _ := a.do(tc.method, tc.path, bob, tc.body); rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s as bob: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
	}

	rec, _ := a.do(http.MethodGet, "/api/tasks", bob, "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("bob's list should be empty, got %s", rec.Body)
	}

	rec, got := a.do(http.MethodGet, "/api/tasks/"+id, alice, "")
	if rec.Code != http.StatusOK || got["status"] != "pending" {
		t.Fatalf("alice's task changed by bob: %d %v", rec.Code, got)
	}
}

func TestRouter_StatusUpdateAndActivity(t *testing.T) {
	a := newTestAPI(t)
	token := a.register("alice")
	id := a.createTask(token, `{"title":"ship it","description":"v1","priority":"high"}`)

	rec, got := a.do(http.MethodPatch, "/api/tasks/"+id, token, `{"status":"in-progress"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", rec.Code)
	}
	if got["status"] != "in-progress" || got["description"] != "v1" || got["priority"] != "high" {
		t.Fatalf("patch changed more than status: %v", got)
	}

	if rec, _ := a.do(http.MethodPatch, "/api/tasks/"+id, token, `{"status":"archived"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", rec.Code)
	}

	rec, _ = a.do(http.MethodGet, "/api/tasks/"+id+"/activity", token, "")
	var entries []struct {
		Action     string `json:"action"`
		FromStatus string `json:"fromStatus"`
		ToStatus   string `json:"toStatus"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "created" || entries[1].Action != "status_changed" ||
		entries[1].FromStatus != "pending" || entries[1].ToStatus != "in-progress" {
		t.Fatalf("unexpected activity: %+v", entries)
	}
}

func TestRouter_AuthenticationRequired(t *testing.T) {
	a := newTestAPI(t)

	rec, body := a.do(http.MethodGet, "/api/tasks", "", "")
	if rec.Code != http.StatusUnauthorized || body["message"] != "missing authorization header" {
		t.Fatalf("no token: %d %v", rec.Code, body)
	}

	rec, _ = a.do(http.MethodGet, "/api/tasks", "garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	a := newTestAPI(t)
	token := a.register("alice")

	if rec, _ := a.do(http.MethodGet, "/api/tasks", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("before logout: expected 200, got %d", rec.Code)
	}

	rec, body := a.do(http.MethodPost, "/api/auth/logout", token, "")
	if rec.Code != http.StatusOK || body["message"] != "Logged out successfully" {
		t.Fatalf("logout: %d %v", rec.Code, body)
	}

	rec, body = a.do(http.MethodGet, "/api/tasks", token, "")
	if rec.Code != http.StatusUnauthorized || body["message"] != "token revoked" {
		t.Fatalf("after logout: %d %v", rec.Code, body)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	a := newTestAPI(t)
	a.register("alice")

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/swagger/doc.json"} {
		if rec, _ := a.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}

	rec, _ := a.do(http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("request metrics missing from /metrics")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec, body := newTestAPI(t).do(http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound || body["message"] != "Not Found" {
		t.Fatalf("unknown route: %d %v", rec.Code, body)
	}
}
