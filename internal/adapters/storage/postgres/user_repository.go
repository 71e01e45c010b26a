package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/idusortus/quotes-service/internal/domain"
)

const userEntity = "user"

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	store *Store
}

// GetByEmail returns the user registered under email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord

	err := r.store.exec(ctx, userEntity, "get", func(db *gorm.DB) error {
		return db.Where("email = ?", email).First(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError(userEntity, "")
	}

	if err != nil {
		return nil, err
	}

	return rec.toDomain(), nil
}

// Add inserts user.
func (r *UserRepository) Add(ctx context.Context, user *domain.User) error {
	return r.store.exec(ctx, userEntity, "add", func(db *gorm.DB) error {
		return db.Create(newUserRecord(user)).Error
	})
}
