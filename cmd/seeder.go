package cmd

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/campussync/complaint-management/internal/complaint"
	"github.com/campussync/complaint-management/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo accounts and optional random complaints for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"complaint_history", "complaints", "users"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		accounts := []struct {
			Username string
			Email    string
			Password string
			Role     string
		}{
			{"admin", "admin@campus.edu", "admin123", user.RoleAdmin},
			{"staff", "staff@campus.edu", "staff123", user.RoleStaff},
			{"staff2", "staff2@campus.edu", "staff123", user.RoleStaff},
			{"student", "student@campus.edu", "student123", user.RoleStudent},
			{"student2", "student2@campus.edu", "student123", user.RoleStudent},
		}

		var staffIDs, studentIDs []int64
		for _, a := range accounts {
			var existing user.User
			err := gormDB.Where("email = ?", a.Email).First(&existing).Error
			if err == nil {
				fmt.Printf("%s user already exists: %s\n", a.Role, a.Email)
				switch a.Role {
				case user.RoleStaff:
					staffIDs = append(staffIDs, existing.ID)
				case user.RoleStudent:
					studentIDs = append(studentIDs, existing.ID)
				}
				continue
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}

			now := time.Now()
			u := user.User{
				Username:     a.Username,
				Email:        a.Email,
				PasswordHash: string(hash),
				Role:         a.Role,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := gormDB.Create(&u).Error; err != nil {
				log.Fatalf("failed to seed %s user: %v", a.Role, err)
			}
			switch a.Role {
			case user.RoleStaff:
				staffIDs = append(staffIDs, u.ID)
			case user.RoleStudent:
				studentIDs = append(studentIDs, u.ID)
			}
			fmt.Printf("Seeded %s user: %s\n", a.Role, a.Email)
		}

		if seedComplaints > 0 {
			if err := seedRandomComplaints(gormDB, studentIDs, staffIDs, seedComplaints, cfg.Escalation.Threshold); err != nil {
				log.Fatalf("failed to seed complaints: %v", err)
			}
			fmt.Printf("Seeded %d random complaints\n", seedComplaints)
		}
	},
}

var seedTitles = []string{
	"Broken streetlight near dorm",
	"Leaking tap in chemistry lab",
	"WiFi dead zone in library",
	"Cracked pavement by lecture hall",
	"Projector not working in room 204",
	"Overflowing bins behind cafeteria",
	"Elevator stuck on second floor",
	"No hot water in east wing",
}

var seedCategories = []string{"Electrical", "Plumbing", "IT", "Infrastructure", "Sanitation"}

// seedRandomComplaints creates n complaints spread across the full status
// vocabulary: pending, assigned in-progress, resolved, and stale escalated
// ones carrying the system history note.
func seedRandomComplaints(db *gorm.DB, studentIDs, staffIDs []int64, n int, threshold time.Duration) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < n; i++ {
		studentID := studentIDs[rng.Intn(len(studentIDs))]
		staffID := staffIDs[rng.Intn(len(staffIDs))]

		posted := time.Now().Add(-time.Duration(rng.Intn(10*24)) * time.Hour)
		c := complaint.Complaint{
			Title:       seedTitles[rng.Intn(len(seedTitles))],
			Category:    seedCategories[rng.Intn(len(seedCategories))],
			Description: "Seeded complaint for development.",
			Priority:    []string{complaint.PriorityLow, complaint.PriorityMedium, complaint.PriorityHigh}[rng.Intn(3)],
			Location:    fmt.Sprintf("Building %c", 'A'+rng.Intn(5)),
			DatePosted:  posted,
			Status:      complaint.StatusPending,
			UserID:      studentID,
			CreatedAt:   posted,
			UpdatedAt:   posted,
		}

		history := []complaint.ComplaintHistory{{
			DateChanged: posted,
			OldStatus:   complaint.StatusCreated,
			NewStatus:   complaint.StatusPending,
			ChangedBy:   &studentID,
		}}

		switch rng.Intn(4) {
		case 0: // stays pending

		case 1: // assigned, in progress
			assignedAt := posted.Add(time.Duration(rng.Intn(24)) * time.Hour)
			c.AssignedTo = &staffID
			c.Status = complaint.StatusInProgress
			c.UpdatedAt = assignedAt
			history = append(history, complaint.ComplaintHistory{
				DateChanged: assignedAt,
				OldStatus:   complaint.StatusPending,
				NewStatus:   complaint.StatusInProgress,
				ChangedBy:   &staffID,
			})

		case 2: // worked and resolved
			assignedAt := posted.Add(time.Duration(rng.Intn(24)) * time.Hour)
			resolvedAt := assignedAt.Add(time.Duration(rng.Intn(48)) * time.Hour)
			c.AssignedTo = &staffID
			c.Status = complaint.StatusResolved
			c.ResolvedAt = &resolvedAt
			c.UpdatedAt = resolvedAt
			history = append(history,
				complaint.ComplaintHistory{
					DateChanged: assignedAt,
					OldStatus:   complaint.StatusPending,
					NewStatus:   complaint.StatusInProgress,
					ChangedBy:   &staffID,
				},
				complaint.ComplaintHistory{
					DateChanged: resolvedAt,
					OldStatus:   complaint.StatusInProgress,
					NewStatus:   complaint.StatusResolved,
					ChangedBy:   &staffID,
				})

		case 3: // aged past the threshold and auto-escalated
			posted = time.Now().Add(-threshold - time.Duration(1+rng.Intn(3*24))*time.Hour)
			escalatedAt := posted.Add(threshold)
			note := complaint.EscalationNote(threshold)
			c.DatePosted = posted
			c.CreatedAt = posted
			c.Status = complaint.StatusEscalated
			c.UpdatedAt = escalatedAt
			history[0].DateChanged = posted
			history = append(history, complaint.ComplaintHistory{
				DateChanged: escalatedAt,
				OldStatus:   complaint.StatusPending,
				NewStatus:   complaint.StatusEscalated,
				Notes:       &note,
			})
		}

		if err := db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to seed complaint: %w", err)
		}

		for j := range history {
			history[j].ComplaintID = c.ID
		}
		if err := db.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to seed complaint history: %w", err)
		}
	}

	return nil
}
