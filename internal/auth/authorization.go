package auth

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

var ErrForbidden = errors.New("forbidden")

// RoleGate is the single authorization capability check used by every
// protected route: a required-role predicate, optionally combined with
// a resource-ownership predicate.
type RoleGate struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewRoleGate(db *sqlx.DB, logger *slog.Logger) *RoleGate {
	return &RoleGate{db: db, logger: logger}
}

// Require builds a middleware admitting only the listed roles.
func (g *RoleGate) Require(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.logger.Warn("access denied: role not permitted",
				"user_id", identity.ID,
				"user_role", identity.Role,
				"required_roles", roles)
			http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireComplaintAuthor admits the complaint's author (admins pass through).
// A complaint that does not exist, or is soft-deleted, reads as forbidden so
// the response does not reveal whether it exists for someone else.
func (g *RoleGate) RequireComplaintAuthor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := g.checkAuthor(r, identity); err != nil {
				if errors.Is(err, ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				g.logger.Error("ownership check failed", "error", err, "user_id", identity.ID)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *RoleGate) checkAuthor(r *http.Request, identity *Identity) error {
	if identity.Role == "admin" {
		return nil
	}

	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return ErrForbidden
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return ErrForbidden
	}

	var ownerID int64
	err = g.db.GetContext(r.Context(), &ownerID,
		"SELECT user_id FROM complaints WHERE id=$1 AND is_deleted=false", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}

	if ownerID != identity.ID {
		return ErrForbidden
	}
	return nil
}
