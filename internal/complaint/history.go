package complaint

import (
	"fmt"
	"time"
)

// EscalationNote renders the note written into the system-authored history
// row produced by the auto-escalation sweep. Whole-day thresholds are
// reported in days; the default 72h reads "System auto-escalation (> 3 days).".
func EscalationNote(threshold time.Duration) string {
	if threshold > 0 && threshold%(24*time.Hour) == 0 {
		days := int(threshold / (24 * time.Hour))
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		return fmt.Sprintf("System auto-escalation (> %d %s).", days, unit)
	}
	return fmt.Sprintf("System auto-escalation (> %s).", threshold)
}

// ComplaintHistory is an append-only audit record of one status transition.
// Rows are never updated or deleted; changed_by is NULL for system changes.
type ComplaintHistory struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ComplaintID int64     `json:"complaint_id" gorm:"column:complaint_id;not null;index"`
	DateChanged time.Time `json:"date_changed" gorm:"column:date_changed;not null"`
	OldStatus   string    `json:"old_status" gorm:"column:old_status;not null"`
	NewStatus   string    `json:"new_status" gorm:"column:new_status;not null"`
	Notes       *string   `json:"notes,omitempty" gorm:"column:notes"`
	ChangedBy   *int64    `json:"changed_by,omitempty" gorm:"column:changed_by"`
}

func (ComplaintHistory) TableName() string {
	return "complaint_history"
}

func newHistory(complaintID int64, oldStatus, newStatus string, notes *string, changedBy *int64) *ComplaintHistory {
	return &ComplaintHistory{
		ComplaintID: complaintID,
		DateChanged: time.Now(),
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Notes:       notes,
		ChangedBy:   changedBy,
	}
}
