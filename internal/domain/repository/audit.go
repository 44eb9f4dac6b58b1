package repository

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// AuditRepository appends to and reads the audit log.
type AuditRepository interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	ListByOrder(ctx context.Context, orderID int64) ([]model.AuditEntry, error)
}
