package http

import (
	"net/http"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// ListsHandler serves task list CRUD for the authenticated user.
type ListsHandler struct {
	ListService *service.ListService
	TaskService *service.TaskService
}

type createListRequest struct {
	Name           string  `json:"name"`
	Visibility     string  `json:"visibility"`
	IsDefault      bool    `json:"is_default"`
	OrganizationID *string `json:"organization_id"`
}

func (h *ListsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req createListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.ListService.Create(r.Context(), userID, service.CreateList{
		Name:           req.Name,
		Visibility:     domain.ListVisibility(req.Visibility),
		IsDefault:      req.IsDefault,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toListResponse(l))
}

func (h *ListsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	lists, err := h.ListService.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListResponse(l))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ListsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	l, err := h.ListService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toListResponse(l))
}

type updateListRequest struct {
	Name       *string `json:"name"`
	Visibility *string `json:"visibility"`
	IsDefault  *bool   `json:"is_default"`
}

func (h *ListsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req updateListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := domain.ListUpdate{Name: req.Name, IsDefault: req.IsDefault}
	if req.Visibility != nil {
		vis := domain.ListVisibility(*req.Visibility)
		upd.Visibility = &vis
	}

	l, err := h.ListService.Update(r.Context(), userID, r.PathValue("id"), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toListResponse(l))
}

func (h *ListsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.ListService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTasks lists the tasks of one list.
func (h *ListsHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	tasks, err := h.TaskService.ListByList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
