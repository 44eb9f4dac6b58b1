package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

type adminRepository struct {
	q querier
}

func (r *adminRepository) Create(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	const query = `INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	a := model.Admin{Username: username, PasswordHash: passwordHash}
	if err := r.q.QueryRow(ctx, query, username, passwordHash).Scan(&a.ID, &a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	const query = `SELECT id, username, password_hash, created_at FROM admins WHERE username=$1`
	var a model.Admin
	if err := r.q.QueryRow(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}
