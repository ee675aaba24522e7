package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/handan-ai/handan/internal/model"
)

// GetDecisionsByWorkItem returns a work item's full decision ledger,
// ordered oldest to newest.
func (db *DB) GetDecisionsByWorkItem(ctx context.Context, workItemID uuid.UUID) ([]model.Decision, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, work_item_id, decision, reason, confidence, created_by, created_at
		 FROM decisions WHERE work_item_id = $1 ORDER BY created_at ASC`,
		workItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: get decisions: %w", err)
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// CountDecisionsByWorkItem returns the ledger length for a work item.
func (db *DB) CountDecisionsByWorkItem(ctx context.Context, workItemID uuid.UUID) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM decisions WHERE work_item_id = $1`, workItemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: count decisions: %w", err)
	}
	return n, nil
}

func scanDecisions(rows pgx.Rows) ([]model.Decision, error) {
	var decisions []model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(
			&d.ID, &d.WorkItemID, &d.Decision, &d.Reason, &d.Confidence, &d.CreatedBy, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
