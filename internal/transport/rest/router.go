package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/campussync/complaint-management/internal/auth"
	"github.com/campussync/complaint-management/internal/complaint"
	"github.com/campussync/complaint-management/internal/report"
	"github.com/campussync/complaint-management/internal/transport/middleware"
	"github.com/campussync/complaint-management/internal/transport/swagger"
	"github.com/campussync/complaint-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, gate *auth.RoleGate, userHandler *user.Handler, complaintHandler *complaint.Handler, reportHandler *report.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Current user
			pr.Get("/users/me", userHandler.GetCurrentUser)

			// Staff directory for the admin assignment view
			pr.Group(func(ar chi.Router) {
				ar.Use(gate.Require(user.RoleAdmin))
				ar.Get("/users/staff", userHandler.ListStaff)
			})

			// Complaint routes
			pr.Route("/complaints", func(cr chi.Router) {
				// Student routes
				cr.Group(func(sr chi.Router) {
					sr.Use(gate.Require(user.RoleStudent))
					sr.Post("/", complaintHandler.CreateComplaint)
					sr.Get("/mine", complaintHandler.ListMine)
				})

				// Author-only edit (admins pass the gate too)
				cr.Group(func(er chi.Router) {
					er.Use(gate.Require(user.RoleStudent, user.RoleAdmin))
					er.Use(gate.RequireComplaintAuthor())
					er.Patch("/{id}", complaintHandler.EditComplaint)
				})

				// Staff routes
				cr.Group(func(fr chi.Router) {
					fr.Use(gate.Require(user.RoleStaff))
					fr.Get("/assigned", complaintHandler.ListAssigned)
					fr.Patch("/{id}/status", complaintHandler.UpdateStatus)
				})

				// Admin routes
				cr.Group(func(ar chi.Router) {
					ar.Use(gate.Require(user.RoleAdmin))
					ar.Get("/", complaintHandler.ListAllComplaints)
					ar.Post("/{id}/assign", complaintHandler.AssignComplaint)
					ar.Delete("/{id}/assign", complaintHandler.UnassignComplaint)
					ar.Delete("/{id}", complaintHandler.DeleteComplaint)
					ar.Post("/escalations/run", complaintHandler.RunEscalation)
				})

				// Any authenticated role; visibility enforced in the service
				cr.Get("/{id}", complaintHandler.GetComplaint)
				cr.Get("/{id}/history", complaintHandler.GetHistory)
				cr.Get("/{id}/image", complaintHandler.GetImage)
			})

			// Admin reports
			pr.Route("/reports", func(rr chi.Router) {
				rr.Use(gate.Require(user.RoleAdmin))
				rr.Get("/overview", reportHandler.GetOverview)
				rr.Get("/staff-performance", reportHandler.GetStaffPerformance)
				rr.Get("/export", reportHandler.ExportCSV)
			})
		})
	})
}
