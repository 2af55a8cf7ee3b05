package user

import (
	"log/slog"
	"net/http"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/transport"
	"github.com/campussync/complaint-management/pkg/logger"
)

type ServiceAPI interface {
	GetByID(userID int64) (*User, error)
	ListStaff() ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(identity.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: failed to load user", "error", err, "user_id", identity.ID)
		h.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// ListStaff backs the admin assignment dropdown.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Service.ListStaff()
	if err != nil {
		h.Logger.Error("ListStaff: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list staff members")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"staff": staff,
	})
}
