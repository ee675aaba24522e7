package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// CreateWorkItemRequest is the request body for POST /v1/work-items.
type CreateWorkItemRequest struct {
	Event ShipmentDelayEvent `json:"event"`
}

// RunResult is the response for POST /v1/work-items/{id}/run.
type RunResult struct {
	WorkItemID uuid.UUID      `json:"work_item_id"`
	NewStatus  WorkItemStatus `json:"new_status"`
	Decision   Recommendation `json:"decision"`
	Reason     string         `json:"reason"`
	Confidence float64        `json:"confidence"`
}

// ReviewRequest is the request body for POST /v1/work-items/{id}/review.
type ReviewRequest struct {
	Action   ReviewAction `json:"action"`
	Reviewer string       `json:"reviewer"`
	Comment  string       `json:"comment"`
}

// Validate checks the review request fields.
func (r ReviewRequest) Validate() error {
	if r.Action != ReviewApprove && r.Action != ReviewReject {
		return fmt.Errorf("action must be APPROVE or REJECT")
	}
	if r.Reviewer == "" {
		return fmt.Errorf("reviewer is required")
	}
	if len(r.Reviewer) > 120 {
		return fmt.Errorf("reviewer exceeds maximum length of 120 characters")
	}
	if len(r.Comment) > 500 {
		return fmt.Errorf("comment exceeds maximum length of 500 characters")
	}
	return nil
}

// ReviewResult is the response for POST /v1/work-items/{id}/review.
type ReviewResult struct {
	WorkItemID  uuid.UUID      `json:"work_item_id"`
	FinalStatus WorkItemStatus `json:"final_status"`
	Reviewer    string         `json:"reviewer"`
}

// WorkItemTrace is the response for GET /v1/work-items/{id}/trace:
// the item plus its full decision ledger, oldest first.
type WorkItemTrace struct {
	WorkItem  WorkItem   `json:"work_item"`
	Decisions []Decision `json:"decisions"`
}

// IngestKnowledgeRequest is the request body for POST /v1/knowledge/ingest.
type IngestKnowledgeRequest struct {
	Source     string  `json:"source"`
	ChunkText  string  `json:"chunk_text"`
	DocType    *string `json:"doc_type,omitempty"`
	SupplierID *string `json:"supplier_id,omitempty"`
	Region     *string `json:"region,omitempty"`
}

// Validate checks the ingest request fields.
func (r IngestKnowledgeRequest) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("source is required")
	}
	if len(r.Source) > MaxKnowledgeSourceLen {
		return fmt.Errorf("source exceeds maximum length of %d characters", MaxKnowledgeSourceLen)
	}
	if r.ChunkText == "" {
		return fmt.Errorf("chunk_text is required")
	}
	if r.DocType != nil && len(*r.DocType) > MaxKnowledgeDocTypeLen {
		return fmt.Errorf("doc_type exceeds maximum length of %d characters", MaxKnowledgeDocTypeLen)
	}
	if r.SupplierID != nil && len(*r.SupplierID) > MaxSupplierIDLen {
		return fmt.Errorf("supplier_id exceeds maximum length of %d characters", MaxSupplierIDLen)
	}
	if r.Region != nil && len(*r.Region) > MaxRegionLen {
		return fmt.Errorf("region exceeds maximum length of %d characters", MaxRegionLen)
	}
	return nil
}

// IngestKnowledgeResult is the response for POST /v1/knowledge/ingest.
// Deduped is true when an identical chunk already existed; ID then refers
// to the existing row.
type IngestKnowledgeResult struct {
	ID      uuid.UUID `json:"id"`
	Source  string    `json:"source"`
	Deduped bool      `json:"deduped"`
}
