package report_test

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal/report"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

// Mock repository for testing
type mockReportRepository struct {
	total      int64
	byStatus   []report.StatusCount
	byCategory []report.CategoryCount
	staff      []report.StaffPerformance
	rows       []report.ExportRow

	lastExportStatus string
}

func (m *mockReportRepository) TotalComplaints() (int64, error) {
	return m.total, nil
}

func (m *mockReportRepository) StatusCounts() ([]report.StatusCount, error) {
	return m.byStatus, nil
}

func (m *mockReportRepository) CategoryCounts() ([]report.CategoryCount, error) {
	return m.byCategory, nil
}

func (m *mockReportRepository) StaffPerformance() ([]report.StaffPerformance, error) {
	return m.staff, nil
}

func (m *mockReportRepository) ExportRows(status string) ([]report.ExportRow, error) {
	m.lastExportStatus = status
	return m.rows, nil
}

var _ = Describe("ReportService", func() {
	var (
		service  *report.Service
		mockRepo *mockReportRepository
	)

	BeforeEach(func() {
		mockRepo = &mockReportRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = report.NewService(mockRepo, logger)
	})

	Describe("Overview", func() {
		It("combines the total with both breakdowns", func() {
			mockRepo.total = 12
			mockRepo.byStatus = []report.StatusCount{
				{Status: "Pending", Count: 7},
				{Status: "Resolved", Count: 5},
			}
			mockRepo.byCategory = []report.CategoryCount{
				{Category: "Electrical", Count: 12},
			}

			overview, err := service.Overview()
			Expect(err).ToNot(HaveOccurred())
			Expect(overview.Total).To(Equal(int64(12)))
			Expect(overview.ByStatus).To(HaveLen(2))
			Expect(overview.ByCategory).To(HaveLen(1))
		})
	})

	Describe("ExportCSV", func() {
		posted := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

		It("writes a header and one denormalized line per complaint", func() {
			resolved := posted.Add(26 * time.Hour)
			mockRepo.rows = []report.ExportRow{
				{
					ID: 1, Title: "Broken streetlight", Category: "Electrical",
					Priority: "High", Status: "Resolved", Location: "North dorm",
					Author: "alex", Assignee: "sam",
					DatePosted: posted, ResolvedAt: &resolved,
				},
				{
					ID: 2, Title: "WiFi dead zone", Category: "IT",
					Priority: "Low", Status: "Pending", Location: "Library",
					Author: "alex", Assignee: "",
					DatePosted: posted,
				},
			}

			var buf bytes.Buffer
			Expect(service.ExportCSV(&buf, "")).To(Succeed())

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(3))

			Expect(records[0][0]).To(Equal("ID"))
			Expect(records[0]).To(HaveLen(10))

			Expect(records[1][1]).To(Equal("Broken streetlight"))
			Expect(records[1][7]).To(Equal("sam"))
			Expect(records[1][9]).To(Equal("2026-04-03 12:30:00"))
		})

		It("labels unassigned complaints and leaves resolved_at blank", func() {
			mockRepo.rows = []report.ExportRow{
				{
					ID: 2, Title: "WiFi dead zone", Category: "IT",
					Priority: "Low", Status: "Pending", Location: "Library",
					Author: "alex", Assignee: "",
					DatePosted: posted,
				},
			}

			var buf bytes.Buffer
			Expect(service.ExportCSV(&buf, "")).To(Succeed())

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).ToNot(HaveOccurred())
			Expect(records[1][7]).To(Equal("Unassigned"))
			Expect(records[1][9]).To(Equal(""))
		})

		It("passes the status filter through to the repository", func() {
			var buf bytes.Buffer
			Expect(service.ExportCSV(&buf, "Escalated")).To(Succeed())
			Expect(mockRepo.lastExportStatus).To(Equal("Escalated"))
		})
	})

	Describe("StaffPerformance", func() {
		It("returns per-staff aggregates including idle staff", func() {
			days := 1.5
			mockRepo.staff = []report.StaffPerformance{
				{StaffID: 2, Username: "sam", ResolvedCount: 4, AvgResolutionDays: &days},
				{StaffID: 5, Username: "robin", ResolvedCount: 0, AvgResolutionDays: nil},
			}

			perf, err := service.StaffPerformance()
			Expect(err).ToNot(HaveOccurred())
			Expect(perf).To(HaveLen(2))
			Expect(perf[1].AvgResolutionDays).To(BeNil())
		})
	})
})
