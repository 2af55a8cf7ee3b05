package cmd

import (
	"fmt"
	"log"

	"github.com/campussync/complaint-management/internal/complaint"
	complaintpg "github.com/campussync/complaint-management/internal/complaint/postgres"
	"github.com/campussync/complaint-management/internal/user"
	userpg "github.com/campussync/complaint-management/internal/user/postgres"
	"github.com/campussync/complaint-management/pkg/logger"
	"github.com/spf13/cobra"
)

// escalateCmd runs one escalation sweep and exits. Useful from cron when the
// server's periodic sweeper is not running.
var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Run one escalation sweep over stale complaints",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Logging.Format)
		lg := logger.L()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		repo := complaintpg.NewComplaintRepository(gormDB)
		users := user.NewService(userpg.NewUserRepository(gormDB))
		service := complaint.NewService(repo, users, cfg.Escalation.Threshold, lg)

		n, err := service.EscalateStale()
		if err != nil {
			log.Fatalf("escalation sweep failed: %v", err)
		}

		fmt.Printf("Escalated %d complaints\n", n)
	},
}
