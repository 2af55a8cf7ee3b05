package postgres

import (
	"github.com/campussync/complaint-management/internal/report"
	"github.com/jmoiron/sqlx"
)

// ReportRepository answers the aggregate queries behind the admin reports
// with plain SQL, bypassing the ORM for read-only analytics.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) TotalComplaints() (int64, error) {
	var total int64
	err := r.db.Get(&total,
		`SELECT COUNT(*) FROM complaints WHERE is_deleted = false`)
	return total, err
}

func (r *ReportRepository) StatusCounts() ([]report.StatusCount, error) {
	var counts []report.StatusCount
	err := r.db.Select(&counts, `
		SELECT status, COUNT(*) AS count
		FROM complaints
		WHERE is_deleted = false
		GROUP BY status
		ORDER BY count DESC`)
	return counts, err
}

func (r *ReportRepository) CategoryCounts() ([]report.CategoryCount, error) {
	var counts []report.CategoryCount
	err := r.db.Select(&counts, `
		SELECT category, COUNT(*) AS count
		FROM complaints
		WHERE is_deleted = false
		GROUP BY category
		ORDER BY count DESC`)
	return counts, err
}

// StaffPerformance left-joins so staff with no resolved complaints still
// appear, with a zero count and a NULL mean.
func (r *ReportRepository) StaffPerformance() ([]report.StaffPerformance, error) {
	var perf []report.StaffPerformance
	err := r.db.Select(&perf, `
		SELECT u.id AS staff_id,
		       u.username,
		       COUNT(c.id) AS resolved_count,
		       AVG(EXTRACT(EPOCH FROM (c.resolved_at - c.date_posted)) / 86400.0) AS avg_resolution_days
		FROM users u
		LEFT JOIN complaints c
		       ON c.assigned_to = u.id
		      AND c.status = 'Resolved'
		      AND c.resolved_at IS NOT NULL
		      AND c.is_deleted = false
		WHERE u.role = 'staff' AND u.is_active = true
		GROUP BY u.id, u.username
		ORDER BY resolved_count DESC, u.username ASC`)
	return perf, err
}

func (r *ReportRepository) ExportRows(status string) ([]report.ExportRow, error) {
	query := `
		SELECT c.id, c.title, c.category, c.priority, c.status, c.location,
		       author.username AS author,
		       COALESCE(staff.username, '') AS assignee,
		       c.date_posted, c.resolved_at
		FROM complaints c
		JOIN users author ON author.id = c.user_id
		LEFT JOIN users staff ON staff.id = c.assigned_to
		WHERE c.is_deleted = false`

	args := []interface{}{}
	if status != "" {
		query += ` AND c.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY c.date_posted DESC`

	var rows []report.ExportRow
	err := r.db.Select(&rows, query, args...)
	return rows, err
}
