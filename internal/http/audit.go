package http

import (
	"net/http"
	"strconv"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// AuditHandler exposes the recent audit trail to admins.
type AuditHandler struct {
	AuditService *service.AuditService
	UserService  *service.UserService
}

func (h *AuditHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())

	caller, err := h.UserService.Get(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if caller.Role != domain.RoleAdmin {
		writeServiceError(w, service.ErrForbidden)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.AuditService.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]auditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditLogResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
