package complaint

import (
	"time"
)

// Complaint statuses form a closed state machine. Every mutation path goes
// through ValidTransition; there is no other way to change status.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusEscalated  = "Escalated"

	// StatusCreated only ever appears as old_status on the first history row.
	StatusCreated = "Created"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// transitions maps each status to the states it may legally move to.
// Resolved is terminal.
var transitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusEscalated},
	StatusInProgress: {StatusResolved, StatusEscalated},
	StatusEscalated:  {StatusInProgress, StatusResolved},
	StatusResolved:   {},
}

func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidTransition reports whether a complaint may move from old to new.
// A same-status "transition" is never valid; callers treat it as a no-op.
func ValidTransition(old, new string) bool {
	for _, allowed := range transitions[old] {
		if allowed == new {
			return true
		}
	}
	return false
}

type Complaint struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"column:title;not null"`
	Category    string     `json:"category" gorm:"column:category;not null;index"`
	Description string     `json:"description" gorm:"column:description;not null"`
	Priority    string     `json:"priority" gorm:"column:priority;not null;default:'Low'"`
	Location    string     `json:"location" gorm:"column:location;not null"`
	ImageFile   *string    `json:"image_file,omitempty" gorm:"column:image_file"`
	DatePosted  time.Time  `json:"date_posted" gorm:"column:date_posted;not null;index"`
	Status      string     `json:"status" gorm:"column:status;not null;default:'Pending';index"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" gorm:"column:resolved_at"`
	IsDeleted   bool       `json:"-" gorm:"column:is_deleted;default:false"`
	UserID      int64      `json:"user_id" gorm:"column:user_id;not null"`
	AssignedTo  *int64     `json:"assigned_to,omitempty" gorm:"column:assigned_to"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// CanBeEdited holds while the complaint sits untouched in the intake queue.
func (c *Complaint) CanBeEdited() bool {
	return c.Status == StatusPending
}

func (c *Complaint) IsAssigned() bool {
	return c.AssignedTo != nil
}

func (c *Complaint) IsAssignedTo(userID int64) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// ResolutionDays returns the age of the complaint at resolution, or nil
// while it is still open.
func (c *Complaint) ResolutionDays() *int {
	if c.ResolvedAt == nil {
		return nil
	}
	days := int(c.ResolvedAt.Sub(c.DatePosted).Hours() / 24)
	return &days
}
