package report

import "time"

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

// CategoryCount is one slice of the category breakdown.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// Overview is the admin analytics summary.
type Overview struct {
	Total      int64           `json:"total"`
	ByStatus   []StatusCount   `json:"by_status"`
	ByCategory []CategoryCount `json:"by_category"`
}

// StaffPerformance aggregates resolution work per staff member. Mean
// resolution time is nil for staff with no resolved complaints.
type StaffPerformance struct {
	StaffID           int64    `db:"staff_id" json:"staff_id"`
	Username          string   `db:"username" json:"username"`
	ResolvedCount     int64    `db:"resolved_count" json:"resolved_count"`
	AvgResolutionDays *float64 `db:"avg_resolution_days" json:"avg_resolution_days"`
}

// ExportRow is one denormalized complaint line for the CSV export.
type ExportRow struct {
	ID         int64      `db:"id"`
	Title      string     `db:"title"`
	Category   string     `db:"category"`
	Priority   string     `db:"priority"`
	Status     string     `db:"status"`
	Location   string     `db:"location"`
	Author     string     `db:"author"`
	Assignee   string     `db:"assignee"`
	DatePosted time.Time  `db:"date_posted"`
	ResolvedAt *time.Time `db:"resolved_at"`
}
