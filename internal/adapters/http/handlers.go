package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nextask/core/internal/application/services"
	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.SignUp(c.Request().Context(), req)
	if err != nil {
		if entities.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, entities.ErrEmailAlreadyInUse) {
			return echo.NewHTTPError(http.StatusConflict, "An account with this email address already exists")
		}
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred, please try again")
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.SignIn(c.Request().Context(), req)
	if err != nil {
		if entities.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, entities.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Account not found, please check your email or sign up")
		}
		if errors.Is(err, entities.ErrWrongPassword) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password, please try again")
		}
		h.logger.Error("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred, please try again")
	}

	return c.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Token refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.SignOut(c.Request().Context(), userID); err != nil {
		h.logger.Error("Logout failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

// TaskHandler handles task-related requests. Every route is scoped to the
// owner carried by the access token.
type TaskHandler struct {
	taskService *services.TaskService
	store       ports.TaskStore
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, store ports.TaskStore, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		store:       store,
		logger:      logger,
	}
}

// ListTasks returns the filtered, display-ordered task list
func (h *TaskHandler) ListTasks(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	filter, err := services.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid filter parameter")
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), ownerID, filter, time.Now())
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "owner_id", ownerID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve tasks")
	}

	return c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks, Filter: string(filter)})
}

// CreateTask adds a task for the current user
func (h *TaskHandler) CreateTask(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	var req ports.AddTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	id, err := h.taskService.AddTask(c.Request().Context(), ownerID, req)
	if err != nil {
		if entities.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Create task failed", "error", err, "owner_id", ownerID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task")
	}

	// Blank text is a no-op, not an error: nothing was written.
	if id == uuid.Nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusCreated, CreateTaskResponse{ID: id})
}

// ToggleTask flips the completed flag of a task
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := h.taskService.ToggleComplete(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Error("Toggle task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task updated"})
}

// UpdateTask edits a task's text and details
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.taskService.UpdateTask(c.Request().Context(), ownerID, id, req); err != nil {
		if entities.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Error("Update task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task updated"})
}

// DeleteTask removes a task permanently. Deletion is irreversible; clients
// confirm with the user before calling this.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Error("Delete task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted"})
}

// StreamTasks pushes the owner's task snapshots over server-sent events:
// the complete current set immediately, then a fresh complete set after
// every change. The subscription is released when the client disconnects.
func (h *TaskHandler) StreamTasks(c echo.Context) error {
	ownerID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	snapshots, stop, err := h.store.Subscribe(ctx, ownerID)
	if err != nil {
		h.logger.Error("Task stream subscription failed", "error", err, "owner_id", ownerID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open task stream")
	}
	defer stop()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.logger.Error("Snapshot encoding failed", "error", err, "owner_id", ownerID)
				return nil
			}
			if _, err := fmt.Fprintf(resp, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// Utility functions and helper types

func getUserIDFromContext(c echo.Context) uuid.UUID {
	user := c.Get("user")
	if user == nil {
		return uuid.Nil
	}

	if userStr, ok := user.(string); ok {
		userID, _ := uuid.Parse(userStr)
		return userID
	}

	return uuid.Nil
}

// Request/Response types
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateTaskResponse struct {
	ID uuid.UUID `json:"id"`
}

type TaskListResponse struct {
	Tasks  []*entities.Task `json:"tasks"`
	Filter string           `json:"filter"`
}
