package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/tasktracker/task-api/internal/api/handler"
)

type readinessBody struct {
	Status       string `json:"status"`
	Dependencies map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"dependencies"`
}

func TestLiveness(t *testing.T) {
	e := newEcho()
	e.GET("/health", handler.NewHealthHandler().Liveness)

	rec := (&echoServer{e}).do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	e := newEcho()
	e.GET("/health/ready", handler.NewReadinessHandler(map[string]handler.DependencyCheck{
		"mongodb": ok,
		"redis":   ok,
	}).Readiness)

	rec := (&echoServer{e}).do(http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[readinessBody](t, rec)
	if body.Status != "ok" || body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	e := newEcho()
	e.GET("/health/ready", handler.NewReadinessHandler(map[string]handler.DependencyCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("dial tcp: refused") },
	}).Readiness)

	rec := (&echoServer{e}).do(http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := decode[readinessBody](t, rec)
	if body.Status != "degraded" {
		t.Fatalf("expected degraded, got %q", body.Status)
	}
	if dep := body.Dependencies["redis"]; dep.Status != "unhealthy" || dep.Error == "" {
		t.Fatalf("redis not reported unhealthy: %+v", dep)
	}
	if body.Dependencies["mongodb"].Status != "ok" {
		t.Fatalf("mongodb should stay ok")
	}
}
