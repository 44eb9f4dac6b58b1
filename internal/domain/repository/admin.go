package repository

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// AdminRepository describes persistence operations with dashboard accounts.
type AdminRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*model.Admin, error)
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
}
