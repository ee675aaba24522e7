package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkItemStatus is the lifecycle state of a work item.
type WorkItemStatus string

const (
	StatusNew           WorkItemStatus = "NEW"
	StatusAutoResolved  WorkItemStatus = "AUTO_RESOLVED"
	StatusEscalated     WorkItemStatus = "ESCALATED"
	StatusHumanApproved WorkItemStatus = "HUMAN_APPROVED"
	StatusHumanRejected WorkItemStatus = "HUMAN_REJECTED"
)

// Terminal reports whether no further transition is defined out of s.
// Only NEW (via run) and ESCALATED (via review) have outgoing edges.
func (s WorkItemStatus) Terminal() bool {
	switch s {
	case StatusAutoResolved, StatusHumanApproved, StatusHumanRejected:
		return true
	}
	return false
}

// WorkItem is the persisted unit of triage work for one shipment-delay
// event. Status and context are mutated only by the run and review
// operations; everything else is immutable after creation.
type WorkItem struct {
	ID        uuid.UUID             `json:"id"`
	Type      string                `json:"type"`
	Status    WorkItemStatus        `json:"status"`
	Payload   ShipmentDelayEvent    `json:"payload"`
	Context   *OrchestrationContext `json:"context,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Decision is one entry in a work item's append-only audit ledger. Once
// written it is never mutated or deleted individually. CreatedBy is nil for
// automated decisions and carries the reviewer identity for human ones.
type Decision struct {
	ID         uuid.UUID `json:"id"`
	WorkItemID uuid.UUID `json:"work_item_id"`
	Decision   string    `json:"decision"`
	Reason     string    `json:"reason"`
	Confidence float64   `json:"confidence"`
	CreatedBy  *string   `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewAction is a human reviewer's verdict on an escalated work item.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
)
