package complaint_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/complaint"
	"github.com/campussync/complaint-management/internal/user"
)

func TestComplaint(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Complaint Suite")
}

// Mock repository for testing
type mockComplaintRepository struct {
	complaints map[int64]*complaint.Complaint
	history    []*complaint.ComplaintHistory
	nextID     int64

	createError error
	updateError error
}

func newMockComplaintRepository() *mockComplaintRepository {
	return &mockComplaintRepository{
		complaints: make(map[int64]*complaint.Complaint),
		nextID:     1,
	}
}

func (m *mockComplaintRepository) Create(c *complaint.Complaint, initial *complaint.ComplaintHistory) error {
	if m.createError != nil {
		return m.createError
	}
	c.ID = m.nextID
	m.nextID++
	m.complaints[c.ID] = c

	initial.ComplaintID = c.ID
	m.history = append(m.history, initial)
	return nil
}

func (m *mockComplaintRepository) GetByID(id int64) (*complaint.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok || c.IsDeleted {
		return nil, errors.New("complaint not found")
	}
	return c, nil
}

func (m *mockComplaintRepository) Update(c *complaint.Complaint) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.complaints[c.ID] = c
	return nil
}

func (m *mockComplaintRepository) UpdateWithHistory(c *complaint.Complaint, h *complaint.ComplaintHistory) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.complaints[c.ID] = c
	m.history = append(m.history, h)
	return nil
}

func (m *mockComplaintRepository) SoftDelete(id int64) error {
	if c, ok := m.complaints[id]; ok {
		c.IsDeleted = true
	}
	return nil
}

func (m *mockComplaintRepository) ListByAuthor(authorID int64, _ complaint.ListFilter) ([]*complaint.Complaint, error) {
	var out []*complaint.Complaint
	for _, c := range m.complaints {
		if c.UserID == authorID && !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockComplaintRepository) ListByAssignee(assigneeID int64, _ complaint.ListFilter) ([]*complaint.Complaint, error) {
	var out []*complaint.Complaint
	for _, c := range m.complaints {
		if c.IsAssignedTo(assigneeID) && !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockComplaintRepository) ListAll(_ complaint.ListFilter) ([]*complaint.Complaint, int64, error) {
	var out []*complaint.Complaint
	for _, c := range m.complaints {
		if !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockComplaintRepository) HistoryForComplaint(complaintID int64) ([]*complaint.ComplaintHistory, error) {
	var out []*complaint.ComplaintHistory
	for _, h := range m.history {
		if h.ComplaintID == complaintID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockComplaintRepository) EscalateStale(cutoff time.Time, note string) (int, error) {
	escalated := 0
	now := time.Now()
	for _, c := range m.complaints {
		if c.IsDeleted || c.Status == complaint.StatusResolved || c.Status == complaint.StatusEscalated {
			continue
		}
		if c.DatePosted.After(cutoff) {
			continue
		}
		n := note
		m.history = append(m.history, &complaint.ComplaintHistory{
			ComplaintID: c.ID,
			DateChanged: now,
			OldStatus:   c.Status,
			NewStatus:   complaint.StatusEscalated,
			Notes:       &n,
		})
		c.Status = complaint.StatusEscalated
		escalated++
	}
	return escalated, nil
}

// Mock user directory for testing
type mockUserDirectory struct {
	users map[int64]*user.User
}

func newMockUserDirectory() *mockUserDirectory {
	return &mockUserDirectory{users: make(map[int64]*user.User)}
}

func (m *mockUserDirectory) GetByID(userID int64) (*user.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

var _ = Describe("ComplaintService", func() {
	const (
		studentID = int64(1)
		staffID   = int64(2)
		adminID   = int64(3)
	)

	var (
		service  *complaint.Service
		mockRepo *mockComplaintRepository
		mockDir  *mockUserDirectory
		logger   *slog.Logger
	)

	submit := func() *complaint.Complaint {
		c, err := service.Create(studentID, complaint.CreateComplaintDTO{
			Title:       "Broken streetlight near dorm",
			Category:    "Electrical",
			Description: "The streetlight by the north dorm entrance is out.",
			Location:    "North dorm entrance",
		}, nil)
		Expect(err).ToNot(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		mockRepo = newMockComplaintRepository()
		mockDir = newMockUserDirectory()
		mockDir.users[staffID] = &user.User{ID: staffID, Username: "staff", Role: user.RoleStaff, IsActive: true}
		mockDir.users[adminID] = &user.User{ID: adminID, Username: "admin", Role: user.RoleAdmin, IsActive: true}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = complaint.NewService(mockRepo, mockDir, 72*time.Hour, logger)
	})

	Describe("Create", func() {
		It("registers a pending complaint with its initial history entry", func() {
			c := submit()

			Expect(c.ID).To(BeNumerically(">", 0))
			Expect(c.Status).To(Equal(complaint.StatusPending))
			Expect(c.Priority).To(Equal(complaint.PriorityLow))
			Expect(c.UserID).To(Equal(studentID))

			history, err := service.History(c.ID, studentID, user.RoleStudent)
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].OldStatus).To(Equal(complaint.StatusCreated))
			Expect(history[0].NewStatus).To(Equal(complaint.StatusPending))
			Expect(history[0].ChangedBy).ToNot(BeNil())
			Expect(*history[0].ChangedBy).To(Equal(studentID))
		})

		It("rejects a title over 100 characters", func() {
			long := make([]byte, 101)
			for i := range long {
				long[i] = 'x'
			}

			_, err := service.Create(studentID, complaint.CreateComplaintDTO{
				Title:       string(long),
				Category:    "Electrical",
				Description: "desc",
				Location:    "somewhere",
			}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown priority", func() {
			_, err := service.Create(studentID, complaint.CreateComplaintDTO{
				Title:       "t",
				Category:    "c",
				Description: "d",
				Location:    "l",
				Priority:    "Urgent",
			}, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByID", func() {
		It("lets the author read their own complaint", func() {
			c := submit()

			got, err := service.GetByID(c.ID, studentID, user.RoleStudent)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})

		It("denies another student", func() {
			c := submit()

			_, err := service.GetByID(c.ID, int64(99), user.RoleStudent)
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("lets staff read any complaint", func() {
			c := submit()

			_, err := service.GetByID(c.ID, staffID, user.RoleStaff)
			Expect(err).ToNot(HaveOccurred())
		})

		It("reports a missing complaint as not found", func() {
			_, err := service.GetByID(42, studentID, user.RoleStudent)
			Expect(err).To(MatchError(internal.ErrComplaintNotFound))
		})
	})

	Describe("Edit", func() {
		It("applies partial updates while pending", func() {
			c := submit()

			updated, err := service.Edit(c.ID, studentID, complaint.UpdateComplaintDTO{
				Description: "Now two streetlights are out.",
				Priority:    complaint.PriorityHigh,
			}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Description).To(Equal("Now two streetlights are out."))
			Expect(updated.Priority).To(Equal(complaint.PriorityHigh))
			Expect(updated.Title).To(Equal("Broken streetlight near dorm"))
		})

		It("denies a non-author", func() {
			c := submit()

			_, err := service.Edit(c.ID, int64(99), complaint.UpdateComplaintDTO{Title: "hijacked"}, nil)
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("refuses once the complaint left Pending", func() {
			c := submit()
			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Edit(c.ID, studentID, complaint.UpdateComplaintDTO{Title: "too late"}, nil)
			Expect(err).To(MatchError(internal.ErrComplaintNotEditable))
		})
	})

	Describe("Assign", func() {
		It("moves the complaint to In Progress and logs the transition", func() {
			c := submit()

			assigned, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())
			Expect(assigned.Status).To(Equal(complaint.StatusInProgress))
			Expect(assigned.AssignedTo).ToNot(BeNil())
			Expect(*assigned.AssignedTo).To(Equal(staffID))

			history, err := service.History(c.ID, adminID, user.RoleAdmin)
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[1].OldStatus).To(Equal(complaint.StatusPending))
			Expect(history[1].NewStatus).To(Equal(complaint.StatusInProgress))
			Expect(*history[1].ChangedBy).To(Equal(adminID))
		})

		It("rejects assigning an already assigned complaint", func() {
			c := submit()
			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Assign(c.ID, staffID, adminID)
			Expect(err).To(MatchError(internal.ErrAlreadyAssigned))
		})

		It("rejects a non-staff assignee", func() {
			c := submit()

			_, err := service.Assign(c.ID, adminID, adminID)
			Expect(err).To(MatchError(internal.ErrAssigneeNotStaff))
		})

		It("re-assigns an unassigned in-progress complaint without a new history row", func() {
			c := submit()
			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Unassign(c.ID, adminID)
			Expect(err).ToNot(HaveOccurred())

			before := len(mockRepo.history)
			assigned, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())
			Expect(assigned.Status).To(Equal(complaint.StatusInProgress))
			Expect(len(mockRepo.history)).To(Equal(before))
		})
	})

	Describe("UpdateStatus", func() {
		var c *complaint.Complaint

		BeforeEach(func() {
			c = submit()
			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())
		})

		It("resolves and stamps resolved_at", func() {
			resolved, err := service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{
				Status: complaint.StatusResolved,
				Notes:  "Replaced the bulb.",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resolved.Status).To(Equal(complaint.StatusResolved))
			Expect(resolved.ResolvedAt).ToNot(BeNil())

			history, err := service.History(c.ID, staffID, user.RoleStaff)
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(3))
			last := history[len(history)-1]
			Expect(last.NewStatus).To(Equal(complaint.StatusResolved))
			Expect(last.Notes).ToNot(BeNil())
			Expect(*last.Notes).To(Equal("Replaced the bulb."))
		})

		It("denies staff the complaint is not assigned to", func() {
			_, err := service.UpdateStatus(c.ID, int64(77), complaint.UpdateStatusDTO{
				Status: complaint.StatusResolved,
			})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("rejects a same-status update without writing history", func() {
			before := len(mockRepo.history)

			_, err := service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{
				Status: complaint.StatusInProgress,
			})
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
			Expect(len(mockRepo.history)).To(Equal(before))
		})

		It("rejects transitions out of Resolved", func() {
			_, err := service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{
				Status: complaint.StatusResolved,
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{
				Status: complaint.StatusInProgress,
			})
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})

	Describe("SoftDelete", func() {
		It("requires explicit confirmation", func() {
			c := submit()

			err := service.SoftDelete(c.ID, false)
			Expect(err).To(MatchError(internal.ErrDeleteNotConfirmed))
		})

		It("hides the complaint and makes a second delete read as not found", func() {
			c := submit()

			Expect(service.SoftDelete(c.ID, true)).To(Succeed())

			_, err := service.GetByID(c.ID, studentID, user.RoleStudent)
			Expect(err).To(MatchError(internal.ErrComplaintNotFound))

			err = service.SoftDelete(c.ID, true)
			Expect(err).To(MatchError(internal.ErrComplaintNotFound))
		})
	})

	Describe("EscalateStale", func() {
		It("escalates complaints older than the threshold with the system note", func() {
			c := submit()
			c.DatePosted = time.Now().Add(-4 * 24 * time.Hour)

			fresh := submit()

			n, err := service.EscalateStale()
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(1))

			escalated, err := service.GetByID(c.ID, adminID, user.RoleAdmin)
			Expect(err).ToNot(HaveOccurred())
			Expect(escalated.Status).To(Equal(complaint.StatusEscalated))

			untouched, err := service.GetByID(fresh.ID, adminID, user.RoleAdmin)
			Expect(err).ToNot(HaveOccurred())
			Expect(untouched.Status).To(Equal(complaint.StatusPending))

			history, err := service.History(c.ID, adminID, user.RoleAdmin)
			Expect(err).ToNot(HaveOccurred())
			last := history[len(history)-1]
			Expect(last.NewStatus).To(Equal(complaint.StatusEscalated))
			Expect(*last.Notes).To(Equal(complaint.EscalationNote(72*time.Hour)))
			Expect(last.ChangedBy).To(BeNil())
		})

		It("writes a note matching a non-default threshold", func() {
			tight := complaint.NewService(mockRepo, mockDir, 24*time.Hour, logger)

			c := submit()
			c.DatePosted = time.Now().Add(-2 * 24 * time.Hour)

			n, err := tight.EscalateStale()
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(1))

			history, err := tight.History(c.ID, adminID, user.RoleAdmin)
			Expect(err).ToNot(HaveOccurred())
			last := history[len(history)-1]
			Expect(*last.Notes).To(Equal("System auto-escalation (> 1 day)."))
		})

		It("skips resolved complaints regardless of age", func() {
			c := submit()
			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{Status: complaint.StatusResolved})
			Expect(err).ToNot(HaveOccurred())
			c.DatePosted = time.Now().Add(-10 * 24 * time.Hour)

			n, err := service.EscalateStale()
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(0))
		})
	})

	Describe("full lifecycle", func() {
		It("tracks a complaint from submission through resolution", func() {
			c := submit()

			_, err := service.Assign(c.ID, staffID, adminID)
			Expect(err).ToNot(HaveOccurred())

			resolved, err := service.UpdateStatus(c.ID, staffID, complaint.UpdateStatusDTO{
				Status: complaint.StatusResolved,
				Notes:  "Fixed.",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resolved.ResolvedAt).ToNot(BeNil())

			history, err := service.History(c.ID, studentID, user.RoleStudent)
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(3))

			statuses := []string{}
			for _, h := range history {
				statuses = append(statuses, h.NewStatus)
			}
			Expect(statuses).To(Equal([]string{
				complaint.StatusPending,
				complaint.StatusInProgress,
				complaint.StatusResolved,
			}))
		})
	})
})
