package complaint

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/auth"
	"github.com/campussync/complaint-management/internal/storage"
	"github.com/campussync/complaint-management/internal/transport"
	"github.com/campussync/complaint-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(authorID int64, dto CreateComplaintDTO, imageFile *string) (*Complaint, error)
	GetByID(id, actorID int64, actorRole string) (*Complaint, error)
	History(id, actorID int64, actorRole string) ([]*ComplaintHistory, error)
	ListForAuthor(authorID int64, filter ListFilter) ([]*Complaint, error)
	ListForAssignee(assigneeID int64, filter ListFilter) ([]*Complaint, error)
	ListAll(filter ListFilter) ([]*Complaint, int64, error)
	Edit(id, actorID int64, dto UpdateComplaintDTO, imageFile *string) (*Complaint, error)
	UpdateStatus(id, actorID int64, dto UpdateStatusDTO) (*Complaint, error)
	Assign(id, staffID, adminID int64) (*Complaint, error)
	Unassign(id, adminID int64) (*Complaint, error)
	SoftDelete(id int64, confirm bool) error
	EscalateStale() (int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Uploads *storage.Store
}

func NewHandler(service ServiceAPI, uploads *storage.Store) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Uploads:     uploads,
	}
}

// CreateComplaint registers a new complaint. Accepts JSON, or
// multipart/form-data when an image is attached.
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateComplaintDTO
	var imageFile *string

	if isMultipart(r) {
		var err error
		dto, imageFile, err = h.parseMultipartCreate(w, r)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("CreateComplaint: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.Create(identity.ID, dto, imageFile)
	if err != nil {
		h.Logger.Error("CreateComplaint: service error", "error", err, "user_id", identity.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	c, err := h.Service.GetByID(id, identity.ID, identity.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// GetHistory returns the complaint's audit trail in chronological order.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	history, err := h.Service.History(id, identity.ID, identity.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"complaint_id": id,
		"history":      history,
	})
}

// ListMine is the student dashboard: the caller's own complaints.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	complaints, err := h.Service.ListForAuthor(identity.ID, parseListFilter(r))
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
	})
}

// ListAssigned is the staff dashboard: complaints assigned to the caller.
func (h *Handler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	complaints, err := h.Service.ListForAssignee(identity.ID, parseListFilter(r))
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
	})
}

// ListAllComplaints is the admin dashboard: every live complaint plus a
// total for pagination.
func (h *Handler) ListAllComplaints(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	complaints, total, err := h.Service.ListAll(filter)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"total":      total,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})
}

// EditComplaint updates complaint content while it is still pending.
func (h *Handler) EditComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var dto UpdateComplaintDTO
	var imageFile *string

	if isMultipart(r) {
		dto, imageFile, err = h.parseMultipartEdit(w, r)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.Edit(id, identity.ID, dto, imageFile)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// UpdateStatus applies a staff transition on an assigned complaint.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpdateStatus(id, identity.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// AssignComplaint hands a complaint to a staff member (admin only).
func (h *Handler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var dto AssignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.Service.Assign(id, dto.StaffID, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// UnassignComplaint clears the assignee (admin only).
func (h *Handler) UnassignComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	c, err := h.Service.Unassign(id, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// DeleteComplaint soft-deletes a complaint (admin only). The confirm flag
// must be set explicitly.
func (h *Handler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var dto DeleteDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if r.URL.Query().Get("confirm") == "true" {
		dto.Confirm = true
	}

	if err := h.Service.SoftDelete(id, dto.Confirm); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": id,
	})
}

// GetImage streams the complaint's attached image, under the same
// visibility rules as the complaint itself.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.complaintID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	c, err := h.Service.GetByID(id, identity.ID, identity.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if c.ImageFile == nil {
		h.WriteError(w, http.StatusNotFound, "complaint has no image")
		return
	}

	rc, err := h.Uploads.Open(r.Context(), *c.ImageFile)
	if err != nil {
		h.Logger.Error("GetImage: failed to open stored image", "error", err, "complaint_id", id)
		h.WriteError(w, http.StatusNotFound, "image not found")
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(*c.ImageFile)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Error("GetImage: failed to stream image", "error", err, "complaint_id", id)
	}
}

// RunEscalation triggers an escalation sweep on demand (admin only).
func (h *Handler) RunEscalation(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.EscalateStale()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "escalation sweep failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"escalated": n,
	})
}

func (h *Handler) complaintID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) parseMultipartCreate(w http.ResponseWriter, r *http.Request) (CreateComplaintDTO, *string, error) {
	dto := CreateComplaintDTO{}

	imageFile, err := h.parseMultipartForm(w, r)
	if err != nil {
		return dto, nil, err
	}

	dto.Title = r.FormValue("title")
	dto.Category = r.FormValue("category")
	dto.Description = r.FormValue("description")
	dto.Priority = r.FormValue("priority")
	dto.Location = r.FormValue("location")
	return dto, imageFile, nil
}

func (h *Handler) parseMultipartEdit(w http.ResponseWriter, r *http.Request) (UpdateComplaintDTO, *string, error) {
	dto := UpdateComplaintDTO{}

	imageFile, err := h.parseMultipartForm(w, r)
	if err != nil {
		return dto, nil, err
	}

	dto.Title = r.FormValue("title")
	dto.Category = r.FormValue("category")
	dto.Description = r.FormValue("description")
	dto.Priority = r.FormValue("priority")
	dto.Location = r.FormValue("location")
	return dto, imageFile, nil
}

// parseMultipartForm bounds the request body, parses the form and stores the
// optional "image" part. Returns the generated object name, or nil when no
// image was attached.
func (h *Handler) parseMultipartForm(w http.ResponseWriter, r *http.Request) (*string, error) {
	maxBytes := h.Uploads.MaxBytes()
	// leave headroom for the text fields and part boundaries
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, internal.NewValidationError("invalid multipart form", internal.ErrCodeValidationFailed)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, internal.NewValidationError("invalid image upload", internal.ErrCodeValidationFailed)
	}
	defer file.Close()

	name, err := h.Uploads.SaveUpload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseListFilter(r *http.Request) ListFilter {
	filter := ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    20,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	return filter
}
