package http

import (
	"net/http"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// TasksHandler serves task CRUD for the authenticated user.
type TasksHandler struct {
	TaskService *service.TaskService
}

type createTaskRequest struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	ListID       string     `json:"list_id"`
	ParentTaskID *string    `json:"parent_task_id"`
	Status       string     `json:"status"`
	Importance   string     `json:"importance"`
	DueAt        *time.Time `json:"due_at"`
}

func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ListID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "list_id is required")
		return
	}

	t, err := h.TaskService.Create(r.Context(), userID, service.CreateTask{
		Title:        req.Title,
		Description:  req.Description,
		ListID:       req.ListID,
		ParentTaskID: req.ParentTaskID,
		Status:       domain.TaskStatus(req.Status),
		Importance:   domain.TaskImportance(req.Importance),
		DueAt:        req.DueAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	t, err := h.TaskService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(t))
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Importance  *string    `json:"importance"`
	DueAt       *time.Time `json:"due_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		CompletedAt: req.CompletedAt,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		upd.Status = &status
	}
	if req.Importance != nil {
		importance := domain.TaskImportance(*req.Importance)
		upd.Importance = &importance
	}

	t, err := h.TaskService.Update(r.Context(), userID, r.PathValue("id"), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.TaskService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
