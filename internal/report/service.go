package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
)

// Repository defines the read-only aggregate queries behind the reports.
type Repository interface {
	TotalComplaints() (int64, error)
	StatusCounts() ([]StatusCount, error)
	CategoryCounts() ([]CategoryCount, error)
	StaffPerformance() ([]StaffPerformance, error)
	ExportRows(status string) ([]ExportRow, error)
}

// Service produces the admin analytics views and the CSV export.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Overview returns the total plus status and category breakdowns.
func (s *Service) Overview() (*Overview, error) {
	total, err := s.repo.TotalComplaints()
	if err != nil {
		s.logger.Error("failed to count complaints", "error", err)
		return nil, err
	}

	byStatus, err := s.repo.StatusCounts()
	if err != nil {
		s.logger.Error("failed to aggregate by status", "error", err)
		return nil, err
	}

	byCategory, err := s.repo.CategoryCounts()
	if err != nil {
		s.logger.Error("failed to aggregate by category", "error", err)
		return nil, err
	}

	return &Overview{
		Total:      total,
		ByStatus:   byStatus,
		ByCategory: byCategory,
	}, nil
}

// StaffPerformance returns resolved counts and mean resolution days per
// staff member, including staff with no resolved complaints.
func (s *Service) StaffPerformance() ([]StaffPerformance, error) {
	perf, err := s.repo.StaffPerformance()
	if err != nil {
		s.logger.Error("failed to aggregate staff performance", "error", err)
		return nil, err
	}
	return perf, nil
}

var exportHeader = []string{
	"ID", "Title", "Category", "Priority", "Status", "Location",
	"Author", "Assigned To", "Date Posted", "Resolved At",
}

// ExportCSV streams all live complaints as CSV, optionally filtered by
// status. Unassigned complaints export with "Unassigned" in the staff
// column.
func (s *Service) ExportCSV(w io.Writer, status string) error {
	rows, err := s.repo.ExportRows(status)
	if err != nil {
		s.logger.Error("failed to load export rows", "error", err)
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, row := range rows {
		assignee := row.Assignee
		if assignee == "" {
			assignee = "Unassigned"
		}
		resolvedAt := ""
		if row.ResolvedAt != nil {
			resolvedAt = row.ResolvedAt.Format("2006-01-02 15:04:05")
		}

		record := []string{
			fmt.Sprintf("%d", row.ID),
			row.Title,
			row.Category,
			row.Priority,
			row.Status,
			row.Location,
			row.Author,
			assignee,
			row.DatePosted.Format("2006-01-02 15:04:05"),
			resolvedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
