package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api"
	"github.com/tasktracker/task-api/internal/api/handler"
	"github.com/tasktracker/task-api/internal/api/middleware"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// newEcho returns an instance configured like the production router: the
// shared validator and the central error handler.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

// asUser stands in for the Auth middleware and attaches a fixed identity.
func asUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := &ports.TokenClaims{UserID: userID, TokenID: "jti-" + userID}
			c.SetRequest(c.Request().WithContext(middleware.WithClaims(c.Request().Context(), claims)))
			return next(c)
		}
	}
}

type echoServer struct {
	e *echo.Echo
}

func (s *echoServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

type messageBody struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
