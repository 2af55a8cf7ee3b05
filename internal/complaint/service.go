package complaint

import (
	"log/slog"
	"time"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/user"
)

// ListFilter narrows listing queries. Zero values mean "no filter".
type ListFilter struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// Repository defines the data access methods for complaints. Soft-deleted
// rows are invisible through every method except the history accessor.
type Repository interface {
	Create(c *Complaint, initial *ComplaintHistory) error
	GetByID(id int64) (*Complaint, error)
	Update(c *Complaint) error
	UpdateWithHistory(c *Complaint, h *ComplaintHistory) error
	SoftDelete(id int64) error
	ListByAuthor(authorID int64, filter ListFilter) ([]*Complaint, error)
	ListByAssignee(assigneeID int64, filter ListFilter) ([]*Complaint, error)
	ListAll(filter ListFilter) ([]*Complaint, int64, error)
	HistoryForComplaint(complaintID int64) ([]*ComplaintHistory, error)
	// EscalateStale atomically escalates every non-terminal complaint posted
	// before the cutoff and writes one system history row per complaint.
	EscalateStale(cutoff time.Time, note string) (int, error)
}

// UserDirectory is the slice of the user service the lifecycle needs:
// role validation for assignment targets.
type UserDirectory interface {
	GetByID(userID int64) (*user.User, error)
}

// Service handles complaint lifecycle business logic
type Service struct {
	repo                Repository
	users               UserDirectory
	escalationThreshold time.Duration
	logger              *slog.Logger
}

func NewService(repo Repository, users UserDirectory, escalationThreshold time.Duration, logger *slog.Logger) *Service {
	if escalationThreshold <= 0 {
		escalationThreshold = 72 * time.Hour
	}
	return &Service{
		repo:                repo,
		users:               users,
		escalationThreshold: escalationThreshold,
		logger:              logger,
	}
}

// Create registers a new complaint for the author. The row and its initial
// Created->Pending history entry are committed together.
func (s *Service) Create(authorID int64, dto CreateComplaintDTO, imageFile *string) (*Complaint, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("complaint validation failed", "error", err, "user_id", authorID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityLow
	}

	now := time.Now()
	c := &Complaint{
		Title:       dto.Title,
		Category:    dto.Category,
		Description: dto.Description,
		Priority:    priority,
		Location:    dto.Location,
		ImageFile:   imageFile,
		DatePosted:  now,
		Status:      StatusPending,
		UserID:      authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	initial := newHistory(0, StatusCreated, StatusPending, nil, &authorID)
	if err := s.repo.Create(c, initial); err != nil {
		s.logger.Error("failed to create complaint", "error", err, "user_id", authorID)
		return nil, err
	}

	s.logger.Info("complaint registered",
		"complaint_id", c.ID,
		"user_id", authorID,
		"category", c.Category,
		"priority", c.Priority)

	return c, nil
}

// GetByID retrieves a complaint with access control: authors see their own,
// staff and admin see everything.
func (s *Service) GetByID(id, actorID int64, actorRole string) (*Complaint, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrComplaintNotFound
	}

	if actorRole == user.RoleStudent && c.UserID != actorID {
		s.logger.Warn("unauthorized access to complaint", "complaint_id", id, "user_id", actorID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return c, nil
}

// History returns the audit trail, under the same visibility rules as GetByID.
func (s *Service) History(id, actorID int64, actorRole string) ([]*ComplaintHistory, error) {
	if _, err := s.GetByID(id, actorID, actorRole); err != nil {
		return nil, err
	}
	return s.repo.HistoryForComplaint(id)
}

// ListForAuthor returns the student dashboard view.
func (s *Service) ListForAuthor(authorID int64, filter ListFilter) ([]*Complaint, error) {
	complaints, err := s.repo.ListByAuthor(authorID, filter)
	if err != nil {
		s.logger.Error("failed to list complaints for author", "error", err, "user_id", authorID)
		return nil, err
	}
	return complaints, nil
}

// ListForAssignee returns the staff dashboard view.
func (s *Service) ListForAssignee(assigneeID int64, filter ListFilter) ([]*Complaint, error) {
	complaints, err := s.repo.ListByAssignee(assigneeID, filter)
	if err != nil {
		s.logger.Error("failed to list complaints for assignee", "error", err, "user_id", assigneeID)
		return nil, err
	}
	return complaints, nil
}

// ListAll returns the admin dashboard view with a total count for pagination.
func (s *Service) ListAll(filter ListFilter) ([]*Complaint, int64, error) {
	complaints, total, err := s.repo.ListAll(filter)
	if err != nil {
		s.logger.Error("failed to list complaints", "error", err)
		return nil, 0, err
	}
	return complaints, total, nil
}

// Edit updates complaint content. Permitted only while the complaint is
// Pending and only by its author; nothing is written otherwise.
func (s *Service) Edit(id, actorID int64, dto UpdateComplaintDTO, imageFile *string) (*Complaint, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrComplaintNotFound
	}

	if c.UserID != actorID {
		s.logger.Warn("edit denied: not the author", "complaint_id", id, "user_id", actorID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if !c.CanBeEdited() {
		s.logger.Warn("edit denied: complaint no longer pending",
			"complaint_id", id,
			"status", c.Status)
		return nil, internal.ErrComplaintNotEditable
	}

	if dto.Title != "" {
		c.Title = dto.Title
	}
	if dto.Category != "" {
		c.Category = dto.Category
	}
	if dto.Description != "" {
		c.Description = dto.Description
	}
	if dto.Priority != "" {
		c.Priority = dto.Priority
	}
	if dto.Location != "" {
		c.Location = dto.Location
	}
	if imageFile != nil {
		c.ImageFile = imageFile
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to update complaint", "error", err, "complaint_id", id)
		return nil, err
	}

	return c, nil
}

// UpdateStatus applies a staff status change on an assigned complaint.
// Resolving stamps resolved_at; every real transition logs exactly one
// history row, and a same-status update is rejected without writing.
func (s *Service) UpdateStatus(id, actorID int64, dto UpdateStatusDTO) (*Complaint, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrComplaintNotFound
	}

	if !c.IsAssignedTo(actorID) {
		s.logger.Warn("status update denied: complaint not assigned to caller",
			"complaint_id", id,
			"user_id", actorID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if dto.Status == c.Status {
		return nil, internal.ErrInvalidTransition
	}

	if !ValidTransition(c.Status, dto.Status) {
		s.logger.Warn("illegal status transition rejected",
			"complaint_id", id,
			"from", c.Status,
			"to", dto.Status)
		return nil, internal.ErrInvalidTransition
	}

	oldStatus := c.Status
	c.Status = dto.Status
	now := time.Now()
	c.UpdatedAt = now
	if dto.Status == StatusResolved {
		c.ResolvedAt = &now
	}

	var notes *string
	if dto.Notes != "" {
		notes = &dto.Notes
	}
	h := newHistory(c.ID, oldStatus, dto.Status, notes, &actorID)

	if err := s.repo.UpdateWithHistory(c, h); err != nil {
		s.logger.Error("failed to update complaint status", "error", err, "complaint_id", id)
		return nil, err
	}

	s.logger.Info("complaint status updated",
		"complaint_id", id,
		"from", oldStatus,
		"to", dto.Status,
		"changed_by", actorID)

	return c, nil
}

// Assign hands a complaint to a staff member. Only unassigned complaints can
// be assigned; re-assignment requires an explicit Unassign first.
func (s *Service) Assign(id, staffID, adminID int64) (*Complaint, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrComplaintNotFound
	}

	if c.IsAssigned() {
		s.logger.Warn("assignment denied: already assigned",
			"complaint_id", id,
			"assigned_to", *c.AssignedTo)
		return nil, internal.ErrAlreadyAssigned
	}

	staff, err := s.users.GetByID(staffID)
	if err != nil || !staff.IsStaff() {
		s.logger.Warn("assignment denied: assignee is not staff", "complaint_id", id, "staff_id", staffID)
		return nil, internal.ErrAssigneeNotStaff
	}

	oldStatus := c.Status
	statusChanges := c.Status != StatusInProgress
	if statusChanges && !ValidTransition(c.Status, StatusInProgress) {
		return nil, internal.ErrInvalidTransition
	}

	c.AssignedTo = &staffID
	c.UpdatedAt = time.Now()

	if !statusChanges {
		// Re-assignment after an unassign mid-flight: no transition, no log.
		if err := s.repo.Update(c); err != nil {
			return nil, err
		}
		return c, nil
	}

	c.Status = StatusInProgress
	h := newHistory(c.ID, oldStatus, StatusInProgress, nil, &adminID)
	if err := s.repo.UpdateWithHistory(c, h); err != nil {
		s.logger.Error("failed to assign complaint", "error", err, "complaint_id", id)
		return nil, err
	}

	s.logger.Info("complaint assigned",
		"complaint_id", id,
		"staff_id", staffID,
		"assigned_by", adminID)

	return c, nil
}

// Unassign clears the assignee without touching status; no transition means
// no history row.
func (s *Service) Unassign(id, adminID int64) (*Complaint, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrComplaintNotFound
	}

	if !c.IsAssigned() {
		return c, nil
	}

	c.AssignedTo = nil
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to unassign complaint", "error", err, "complaint_id", id)
		return nil, err
	}

	s.logger.Info("complaint unassigned", "complaint_id", id, "unassigned_by", adminID)
	return c, nil
}

// SoftDelete hides a complaint from every default query. The row and its
// history remain; deleting twice reads as not-found.
func (s *Service) SoftDelete(id int64, confirm bool) error {
	if !confirm {
		return internal.ErrDeleteNotConfirmed
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrComplaintNotFound
	}

	if err := s.repo.SoftDelete(id); err != nil {
		s.logger.Error("failed to soft-delete complaint", "error", err, "complaint_id", id)
		return err
	}

	s.logger.Info("complaint soft-deleted", "complaint_id", id)
	return nil
}

// EscalateStale force-escalates every complaint older than the threshold
// that is not already Resolved or Escalated. The check-and-update runs in
// one transaction, so concurrent sweeps cannot write duplicate history rows.
func (s *Service) EscalateStale() (int, error) {
	cutoff := time.Now().Add(-s.escalationThreshold)

	n, err := s.repo.EscalateStale(cutoff, EscalationNote(s.escalationThreshold))
	if err != nil {
		s.logger.Error("escalation sweep failed", "error", err)
		return 0, err
	}

	if n > 0 {
		s.logger.Info("escalation sweep completed", "escalated", n)
	}
	return n, nil
}
