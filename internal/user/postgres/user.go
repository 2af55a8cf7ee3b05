package postgres

import (
	"errors"
	"time"

	"github.com/campussync/complaint-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ? AND is_active = ?", email, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListByRole(role string) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("role = ? AND is_active = ?", role, true).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return r.db.Create(u).Error
}
