package http

import (
	"net/http"
	"strconv"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// UsersHandler serves profile reads, the admin listing, and self updates.
type UsersHandler struct {
	UserService *service.UserService
}

func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	u, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

type userPageResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pg, err := h.UserService.List(r.Context(), callerID, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := userPageResponse{
		Users: make([]userResponse, 0, len(pg.Users)),
		Total: pg.Total,
		Page:  pg.Page,
		Limit: pg.Limit,
	}
	for _, u := range pg.Users {
		out.Users = append(out.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())
	targetID := r.PathValue("id")

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := domain.UserUpdate{Username: req.Username}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		upd.Role = &role
	}
	if req.Status != nil {
		status := domain.UserStatus(*req.Status)
		upd.Status = &status
	}

	u, err := h.UserService.Update(r.Context(), callerID, targetID, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())
	targetID := r.PathValue("id")

	if err := h.UserService.Remove(r.Context(), callerID, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
