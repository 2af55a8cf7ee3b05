package report_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal/report"
	"github.com/campussync/complaint-management/internal/transport"
)

type mockReportService struct {
	overview  *report.Overview
	staff     []report.StaffPerformance
	exportCSV string
	err       error
}

func (m *mockReportService) Overview() (*report.Overview, error) {
	return m.overview, m.err
}

func (m *mockReportService) StaffPerformance() ([]report.StaffPerformance, error) {
	return m.staff, m.err
}

func (m *mockReportService) ExportCSV(w io.Writer, status string) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.exportCSV)
	return err
}

var _ = Describe("ReportHandler", func() {
	var (
		mockSvc *mockReportService
		handler *report.Handler
	)

	BeforeEach(func() {
		mockSvc = &mockReportService{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = &report.Handler{
			BaseHandler: transport.NewBaseHandler(slogger),
			Service:     mockSvc,
		}
	})

	Describe("ExportCSV", func() {
		It("serves the export as a CSV attachment", func() {
			mockSvc.exportCSV = "ID,Title\n1,Broken streetlight\n"

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/export", nil)
			handler.ExportCSV(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("text/csv"))
			Expect(rec.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="complaints.csv"`))
			Expect(rec.Body.String()).To(Equal(mockSvc.exportCSV))
		})

		It("returns 500 without attachment headers when the export fails", func() {
			mockSvc.err = errors.New("query failed")

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/export", nil)
			handler.ExportCSV(rec, req)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Header().Get("Content-Disposition")).To(BeEmpty())
			Expect(rec.Header().Get("Content-Type")).NotTo(Equal("text/csv"))
		})
	})
})
