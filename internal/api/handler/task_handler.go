package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/core/ports"
)

// TaskHandler serves the owner-scoped task endpoints. The owner is always the
// authenticated caller; no route accepts an owner id from the client.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task fields"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), ownerID, toCreateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  messageResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      404  {object}  messageResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// UpdateStatus handles PATCH /api/tasks/:id.
//
// @Summary      Change a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Task id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), ownerID, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

// Activity handles GET /api/tasks/:id/activity.
//
// @Summary      Task audit trail
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {array}   activityResponse
// @Failure      404  {object}  messageResponse
// @Router       /tasks/{id}/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	entries, err := h.service.Activity(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActivityResponse(entries))
}
