package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/collabhq/collaboard/internal/models"
)

// UserStore provides user persistence on top of GORM.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore bound to the given connection.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// EmailExists reports whether a live account already uses the email.
// This is a pre-flight optimization only; the partial unique index on
// users.email is the actual guarantee.
func (s *UserStore) EmailExists(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// CreateUser persists a new user. A unique-constraint violation on email is
// mapped to models.ErrEmailTaken so two redemptions of the same token cannot
// both create an account.
func (s *UserStore) CreateUser(u *models.User) error {
	if err := s.db.Create(u).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given (normalized) email.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (s *UserStore) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the user and everything they own. The cascade runs as an
// explicit ordered sequence inside one transaction; see cascade.go.
func (s *UserStore) DeleteUser(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, id)
	})
}
