package report

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/campussync/complaint-management/internal/transport"
	"github.com/campussync/complaint-management/pkg/logger"
)

type ServiceAPI interface {
	Overview() (*Overview, error)
	StaffPerformance() ([]StaffPerformance, error)
	ExportCSV(w io.Writer, status string) error
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

// GetOverview returns the admin analytics summary.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Overview()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	h.WriteJSON(w, http.StatusOK, overview)
}

// GetStaffPerformance returns per-staff resolution statistics.
func (h *Handler) GetStaffPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.Service.StaffPerformance()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"staff": perf,
	})
}

// ExportCSV serves the complaint export as a CSV attachment. The export is
// built in full before any header goes out, so a repository failure still
// surfaces as a 500 instead of a truncated 200.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var buf bytes.Buffer
	if err := h.Service.ExportCSV(&buf, status); err != nil {
		h.Logger.Error("ExportCSV: failed to build export", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="complaints.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportCSV: failed to write export", "error", err)
	}
}
