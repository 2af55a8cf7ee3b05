package postgres

import (
	"errors"
	"time"

	"github.com/campussync/complaint-management/internal/complaint"
	"gorm.io/gorm"
)

// ComplaintRepository implements the complaint.Repository interface using GORM
type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) complaint.Repository {
	return &ComplaintRepository{db: db}
}

// Create saves a new complaint together with its initial history row.
func (r *ComplaintRepository) Create(c *complaint.Complaint, initial *complaint.ComplaintHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		initial.ComplaintID = c.ID
		return tx.Create(initial).Error
	})
}

// GetByID retrieves a complaint by its ID. Soft-deleted rows read as not found.
func (r *ComplaintRepository) GetByID(id int64) (*complaint.Complaint, error) {
	var c complaint.Complaint
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ComplaintRepository) Update(c *complaint.Complaint) error {
	c.UpdatedAt = time.Now()
	return r.db.Save(c).Error
}

// UpdateWithHistory commits a status change and its audit row atomically.
func (r *ComplaintRepository) UpdateWithHistory(c *complaint.Complaint, h *complaint.ComplaintHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		return tx.Create(h).Error
	})
}

func (r *ComplaintRepository) SoftDelete(id int64) error {
	return r.db.Model(&complaint.Complaint{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

func (r *ComplaintRepository) ListByAuthor(authorID int64, filter complaint.ListFilter) ([]*complaint.Complaint, error) {
	var complaints []*complaint.Complaint
	q := r.db.Where("user_id = ? AND is_deleted = ?", authorID, false)
	q = applyFilter(q, filter)
	err := paginate(q, filter).Order("date_posted DESC").Find(&complaints).Error
	return complaints, err
}

func (r *ComplaintRepository) ListByAssignee(assigneeID int64, filter complaint.ListFilter) ([]*complaint.Complaint, error) {
	var complaints []*complaint.Complaint
	q := r.db.Where("assigned_to = ? AND is_deleted = ?", assigneeID, false)
	q = applyFilter(q, filter)
	err := paginate(q, filter).Order("date_posted DESC").Find(&complaints).Error
	return complaints, err
}

// ListAll returns a page of non-deleted complaints plus the total match count.
func (r *ComplaintRepository) ListAll(filter complaint.ListFilter) ([]*complaint.Complaint, int64, error) {
	var complaints []*complaint.Complaint
	var total int64

	base := r.db.Model(&complaint.Complaint{}).Where("is_deleted = ?", false)
	base = applyFilter(base, filter)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(base, filter).Order("date_posted DESC").Find(&complaints).Error
	return complaints, total, err
}

func (r *ComplaintRepository) HistoryForComplaint(complaintID int64) ([]*complaint.ComplaintHistory, error) {
	var history []*complaint.ComplaintHistory
	err := r.db.Where("complaint_id = ?", complaintID).
		Order("date_changed ASC").
		Find(&history).Error
	return history, err
}

// EscalateStale escalates every non-terminal complaint posted before the
// cutoff. The status check is repeated inside the per-row UPDATE, so a row
// picked up by two concurrent sweeps is escalated (and logged) exactly once.
func (r *ComplaintRepository) EscalateStale(cutoff time.Time, note string) (int, error) {
	escalated := 0

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var stale []*complaint.Complaint
		err := tx.Where("status NOT IN ? AND date_posted <= ? AND is_deleted = ?",
			[]string{complaint.StatusResolved, complaint.StatusEscalated}, cutoff, false).
			Find(&stale).Error
		if err != nil {
			return err
		}

		now := time.Now()
		for _, c := range stale {
			res := tx.Model(&complaint.Complaint{}).
				Where("id = ? AND status NOT IN ?",
					c.ID, []string{complaint.StatusResolved, complaint.StatusEscalated}).
				Updates(map[string]interface{}{
					"status":     complaint.StatusEscalated,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// lost the race to another sweep; nothing to log
				continue
			}

			h := &complaint.ComplaintHistory{
				ComplaintID: c.ID,
				DateChanged: now,
				OldStatus:   c.Status,
				NewStatus:   complaint.StatusEscalated,
				Notes:       &note,
				ChangedBy:   nil,
			}
			if err := tx.Create(h).Error; err != nil {
				return err
			}
			escalated++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}
	return escalated, nil
}

func paginate(q *gorm.DB, filter complaint.ListFilter) *gorm.DB {
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

func applyFilter(q *gorm.DB, filter complaint.ListFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("title LIKE ?", "%"+filter.Search+"%")
	}
	return q
}
