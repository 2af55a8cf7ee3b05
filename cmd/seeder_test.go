package cmd

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campussync/complaint-management/internal/complaint"
)

var _ = Describe("Seeder", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&complaint.Complaint{}, &complaint.ComplaintHistory{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("covers the full status vocabulary with consistent history", func() {
		threshold := 72 * time.Hour
		students := []int64{10, 11}
		staff := []int64{20, 21}

		Expect(seedRandomComplaints(db, students, staff, 64, threshold)).To(Succeed())

		var complaints []complaint.Complaint
		Expect(db.Find(&complaints).Error).To(Succeed())
		Expect(complaints).To(HaveLen(64))

		statuses := map[string]int{}
		for _, c := range complaints {
			statuses[c.Status]++

			var history []complaint.ComplaintHistory
			Expect(db.Where("complaint_id = ?", c.ID).Order("date_changed ASC").Find(&history).Error).To(Succeed())
			Expect(history).NotTo(BeEmpty())
			Expect(history[0].OldStatus).To(Equal(complaint.StatusCreated))
			Expect(history[0].NewStatus).To(Equal(complaint.StatusPending))

			switch c.Status {
			case complaint.StatusResolved:
				Expect(c.ResolvedAt).NotTo(BeNil())
				Expect(c.AssignedTo).NotTo(BeNil())
			case complaint.StatusEscalated:
				last := history[len(history)-1]
				Expect(last.NewStatus).To(Equal(complaint.StatusEscalated))
				Expect(last.ChangedBy).To(BeNil())
				Expect(last.Notes).NotTo(BeNil())
				Expect(*last.Notes).To(Equal(complaint.EscalationNote(threshold)))
				Expect(c.DatePosted.Before(time.Now().Add(-threshold))).To(BeTrue())
			default:
				Expect(c.ResolvedAt).To(BeNil())
			}
		}

		for _, status := range []string{
			complaint.StatusPending,
			complaint.StatusInProgress,
			complaint.StatusResolved,
			complaint.StatusEscalated,
		} {
			Expect(statuses[status]).To(BeNumerically(">", 0), status)
		}
	})
})
