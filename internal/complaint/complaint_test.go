package complaint_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal/complaint"
)

var _ = Describe("Status transitions", func() {
	DescribeTable("ValidTransition",
		func(from, to string, expected bool) {
			Expect(complaint.ValidTransition(from, to)).To(Equal(expected))
		},
		Entry("pending to in progress", complaint.StatusPending, complaint.StatusInProgress, true),
		Entry("pending to escalated", complaint.StatusPending, complaint.StatusEscalated, true),
		Entry("pending to resolved skips work", complaint.StatusPending, complaint.StatusResolved, false),
		Entry("in progress to resolved", complaint.StatusInProgress, complaint.StatusResolved, true),
		Entry("in progress to escalated", complaint.StatusInProgress, complaint.StatusEscalated, true),
		Entry("in progress back to pending", complaint.StatusInProgress, complaint.StatusPending, false),
		Entry("escalated to in progress", complaint.StatusEscalated, complaint.StatusInProgress, true),
		Entry("escalated to resolved", complaint.StatusEscalated, complaint.StatusResolved, true),
		Entry("resolved is terminal", complaint.StatusResolved, complaint.StatusInProgress, false),
		Entry("resolved cannot escalate", complaint.StatusResolved, complaint.StatusEscalated, false),
		Entry("unknown source status", "Bogus", complaint.StatusResolved, false),
	)

	It("only allows editing while pending", func() {
		c := complaint.Complaint{Status: complaint.StatusPending}
		Expect(c.CanBeEdited()).To(BeTrue())

		for _, status := range []string{
			complaint.StatusInProgress,
			complaint.StatusResolved,
			complaint.StatusEscalated,
		} {
			c.Status = status
			Expect(c.CanBeEdited()).To(BeFalse())
		}
	})

	It("computes resolution days from posting to resolution", func() {
		posted := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		resolved := posted.Add(60 * time.Hour)

		c := complaint.Complaint{DatePosted: posted, ResolvedAt: &resolved}
		days := c.ResolutionDays()
		Expect(days).ToNot(BeNil())
		Expect(*days).To(Equal(2))

		c.ResolvedAt = nil
		Expect(c.ResolutionDays()).To(BeNil())
	})
})

var _ = Describe("Escalation note", func() {
	DescribeTable("EscalationNote follows the configured threshold",
		func(threshold time.Duration, expected string) {
			Expect(complaint.EscalationNote(threshold)).To(Equal(expected))
		},
		Entry("default 72h", 72*time.Hour, "System auto-escalation (> 3 days)."),
		Entry("one day", 24*time.Hour, "System auto-escalation (> 1 day)."),
		Entry("four days", 96*time.Hour, "System auto-escalation (> 4 days)."),
		Entry("sub-day threshold", 36*time.Hour, "System auto-escalation (> 36h0m0s)."),
	)
})
