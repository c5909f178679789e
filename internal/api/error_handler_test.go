package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
)

func handle(t *testing.T, method string, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if method == http.MethodHead {
		return rec.Code, rec.Body.String()
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body.Message
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"duplicate user", domain.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{"wrapped duplicate", fmt.Errorf("register: %w", domain.ErrUserExists), http.StatusBadRequest, "User already exists"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"task not found", domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, "validation failed: title is required"},
		{"unauthenticated", fmt.Errorf("%w: token expired", domain.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated: token expired"},
		{"unknown", errors.New("mongo: connection reset"), http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := handle(t, http.MethodGet, tc.err)
			if code != tc.wantCode || msg != tc.wantMsg {
				t.Fatalf("got %d %q, want %d %q", code, msg, tc.wantCode, tc.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_EchoErrors(t *testing.T) {
	code, msg := handle(t, http.MethodGet, echo.NewHTTPError(http.StatusUnauthorized, "token revoked"))
	if code != http.StatusUnauthorized || msg != "token revoked" {
		t.Fatalf("got %d %q", code, msg)
	}

	code, msg = handle(t, http.MethodGet, echo.ErrNotFound)
	if code != http.StatusNotFound || msg != "Not Found" {
		t.Fatalf("got %d %q", code, msg)
	}

	code, msg = handle(t, http.MethodGet, echo.NewHTTPError(http.StatusBadGateway, "upstream detail"))
	if code != http.StatusBadGateway || msg != internalErrorMessage {
		t.Fatalf("5xx detail must be hidden, got %d %q", code, msg)
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	code, body := handle(t, http.MethodHead, domain.ErrTaskNotFound)
	if code != http.StatusNotFound || body != "" {
		t.Fatalf("got %d %q", code, body)
	}
}
