package http

import (
	"net/http"

	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/pkg/httpx"
)

// OrganizationsHandler serves organization CRUD for the authenticated user.
type OrganizationsHandler struct {
	OrganizationService *service.OrganizationService
}

type organizationRequest struct {
	Name string `json:"name"`
}

func (h *OrganizationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req organizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.OrganizationService.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toOrganizationResponse(o))
}

func (h *OrganizationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	orgs, err := h.OrganizationService.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]organizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *OrganizationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	o, err := h.OrganizationService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(o))
}

func (h *OrganizationsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	var req organizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.OrganizationService.Rename(r.Context(), userID, r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(o))
}

func (h *OrganizationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.OrganizationService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
