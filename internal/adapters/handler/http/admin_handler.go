package http

import (
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type AdminHandler struct {
	service ports.LedgerService
	access  ports.AccessControl
}

func NewAdminHandler(service ports.LedgerService, access ports.AccessControl) *AdminHandler {
	return &AdminHandler{
		service: service,
		access:  access,
	}
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// TransferAdmin godoc
// @Summary      Transfers the administrator role
// @Description  Only the current administrator may transfer the role.
// @Tags         admin
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      401
// @Router       /admin/transfer [post]
func (h *AdminHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized: missing caller identity", http.StatusUnauthorized)
		return
	}

	var req transferAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.TransferAdmin(r.Context(), caller, req.NewAdmin); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"admin": req.NewAdmin})
}

func (h *AdminHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.access.CurrentAdmin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"admin": admin})
}
