package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// Wire shapes. Domain structs stay tag-free; everything that crosses the
// HTTP boundary is mapped through one of these.

type userResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	AuthProvider  string     `json:"auth_provider"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Role:          string(u.Role),
		Status:        string(u.Status),
		AuthProvider:  string(u.AuthProvider),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		DeletedAt:     u.DeletedAt,
	}
}

type organizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrganizationResponse(o domain.Organization) organizationResponse {
	return organizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		OwnerID:   o.OwnerID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type listResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Visibility     string     `json:"visibility"`
	IsDefault      bool       `json:"is_default"`
	OwnerID        string     `json:"owner_id"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toListResponse(l domain.List) listResponse {
	return listResponse{
		ID:             l.ID,
		Name:           l.Name,
		Visibility:     string(l.Visibility),
		IsDefault:      l.IsDefault,
		OwnerID:        l.OwnerID,
		OrganizationID: l.OrganizationID,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

type taskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Status       string     `json:"status"`
	Importance   string     `json:"importance"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ListID       string     `json:"list_id"`
	CreatedBy    string     `json:"created_by"`
	UpdatedBy    string     `json:"updated_by"`
	ParentTaskID *string    `json:"parent_task_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Importance:   string(t.Importance),
		DueAt:        t.DueAt,
		CompletedAt:  t.CompletedAt,
		ListID:       t.ListID,
		CreatedBy:    t.CreatedBy,
		UpdatedBy:    t.UpdatedBy,
		ParentTaskID: t.ParentTaskID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type auditLogResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toAuditLogResponse(a domain.AuditLog) auditLogResponse {
	return auditLogResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Details:    a.Details,
		CreatedAt:  a.CreatedAt,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeServiceError maps the service failure taxonomy onto HTTP status
// codes. Anything outside the taxonomy is an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, service.ErrInvalidToken.Error())
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrNotFound.Error())
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, service.ErrConflict.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}
