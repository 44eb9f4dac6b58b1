package postgres

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

type auditRepository struct {
	q querier
}

func (r *auditRepository) Append(ctx context.Context, entry model.AuditEntry) error {
	const query = `INSERT INTO audit_log (order_id, action, actor, note) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, entry.OrderID, entry.Action, entry.Actor, entry.Note)
	return err
}

func (r *auditRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.AuditEntry, error) {
	const query = `SELECT id, order_id, action, actor, note, created_at
                   FROM audit_log WHERE order_id=$1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Action, &e.Actor, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
