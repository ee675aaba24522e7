package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/handan-ai/handan/internal/model"
)

// CreateWorkItem inserts a new work item in status NEW and returns it.
func (db *DB) CreateWorkItem(ctx context.Context, event model.ShipmentDelayEvent) (model.WorkItem, error) {
	now := time.Now().UTC()
	wi := model.WorkItem{
		ID:        uuid.New(),
		Type:      model.WorkItemTypeShipmentDelay,
		Status:    model.StatusNew,
		Payload:   event,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO work_items (id, type, status, payload, context, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wi.ID, wi.Type, wi.Status, wi.Payload, wi.Context, wi.CreatedAt, wi.UpdatedAt,
	)
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("storage: create work item: %w", err)
	}
	return wi, nil
}

// GetWorkItem retrieves a work item by ID.
func (db *DB) GetWorkItem(ctx context.Context, id uuid.UUID) (model.WorkItem, error) {
	var wi model.WorkItem
	err := db.pool.QueryRow(ctx,
		`SELECT id, type, status, payload, context, created_at, updated_at
		 FROM work_items WHERE id = $1`, id,
	).Scan(&wi.ID, &wi.Type, &wi.Status, &wi.Payload, &wi.Context, &wi.CreatedAt, &wi.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.WorkItem{}, fmt.Errorf("storage: work item %s: %w", id, ErrNotFound)
		}
		return model.WorkItem{}, fmt.Errorf("storage: get work item: %w", err)
	}
	return wi, nil
}

// TransitionWorkItem atomically updates a work item's status (and context,
// when octx is non-nil) and appends a decision ledger entry. Either both
// writes commit or neither does, so the ledger can never disagree with the
// item status.
func (db *DB) TransitionWorkItem(ctx context.Context, id uuid.UUID, status model.WorkItemStatus, octx *model.OrchestrationContext, d model.Decision) (model.Decision, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return model.Decision{}, fmt.Errorf("storage: begin transition tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	var tag pgconn.CommandTag
	if octx != nil {
		tag, err = tx.Exec(ctx,
			`UPDATE work_items SET status = $1, context = $2, updated_at = $3 WHERE id = $4`,
			status, octx, now, id,
		)
	} else {
		tag, err = tx.Exec(ctx,
			`UPDATE work_items SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, id,
		)
	}
	if err != nil {
		return model.Decision{}, fmt.Errorf("storage: update work item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Decision{}, fmt.Errorf("storage: work item %s: %w", id, ErrNotFound)
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.WorkItemID = id
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO decisions (id, work_item_id, decision, reason, confidence, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.WorkItemID, d.Decision, d.Reason, d.Confidence, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return model.Decision{}, fmt.Errorf("storage: append decision: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Decision{}, fmt.Errorf("storage: commit transition: %w", err)
	}
	return d, nil
}

// DeleteSimulationWorkItems removes all work items whose shipment carries
// the simulation prefix. Ledger entries cascade. Returns the number of work
// items deleted.
func (db *DB) DeleteSimulationWorkItems(ctx context.Context, shipmentIDPrefix string) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM work_items WHERE payload->>'shipment_id' LIKE $1 || '%'`,
		shipmentIDPrefix,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: delete simulation work items: %w", err)
	}
	return tag.RowsAffected(), nil
}
