package profile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"movitex/internal/users"
)

// Repository reads user rows. It never writes.
type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
