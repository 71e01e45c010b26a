package postgres

import (
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
)

// quoteRecord is the GORM model for the quotes table.
type quoteRecord struct {
	ID        int       `gorm:"primaryKey;autoIncrement"`
	Author    string    `gorm:"size:100;not null"`
	Content   string    `gorm:"size:500;not null"`
	Category  string    `gorm:"size:50;not null;default:'';index"`
	Likes     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (quoteRecord) TableName() string {
	return "quotes"
}

func newQuoteRecord(q *domain.Quote) *quoteRecord {
	return &quoteRecord{
		ID:        q.ID,
		Author:    q.Author,
		Content:   q.Content,
		Category:  q.Category,
		Likes:     q.Likes,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func (r *quoteRecord) toDomain() domain.Quote {
	return domain.Quote{
		ID:        r.ID,
		Author:    r.Author,
		Content:   r.Content,
		Category:  r.Category,
		Likes:     r.Likes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// userRecord is the GORM model for the users table.
type userRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Roles        []string  `gorm:"serializer:json;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string {
	return "users"
}

func newUserRecord(u *domain.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
		CreatedAt:    u.CreatedAt,
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Roles:        r.Roles,
		CreatedAt:    r.CreatedAt,
	}
}
