package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handan-ai/handan/internal/model"
)

func validEvent() model.ShipmentDelayEvent {
	return model.ShipmentDelayEvent{
		ShipmentID:            "SHP-1001",
		SupplierID:            "ACME",
		OriginalETA:           "2026-08-01",
		UpdatedETA:            "2026-08-03",
		DelayDays:             2,
		InventoryDaysOfSupply: 10,
		OrderValue:            25000,
		Region:                "EU",
	}
}

func TestShipmentDelayEventValidate(t *testing.T) {
	require.NoError(t, validEvent().Validate())

	tests := []struct {
		name   string
		mutate func(*model.ShipmentDelayEvent)
		errMsg string
	}{
		{"missing shipment_id", func(e *model.ShipmentDelayEvent) { e.ShipmentID = "" }, "shipment_id is required"},
		{"shipment_id too long", func(e *model.ShipmentDelayEvent) { e.ShipmentID = strings.Repeat("x", 51) }, "shipment_id exceeds"},
		{"missing supplier_id", func(e *model.ShipmentDelayEvent) { e.SupplierID = "" }, "supplier_id is required"},
		{"missing region", func(e *model.ShipmentDelayEvent) { e.Region = "" }, "region is required"},
		{"missing original_eta", func(e *model.ShipmentDelayEvent) { e.OriginalETA = "" }, "original_eta is required"},
		{"missing updated_eta", func(e *model.ShipmentDelayEvent) { e.UpdatedETA = "" }, "updated_eta is required"},
		{"negative delay", func(e *model.ShipmentDelayEvent) { e.DelayDays = -1 }, "delay_days must be between"},
		{"delay too large", func(e *model.ShipmentDelayEvent) { e.DelayDays = 366 }, "delay_days must be between"},
		{"negative inventory", func(e *model.ShipmentDelayEvent) { e.InventoryDaysOfSupply = -1 }, "inventory_days_of_supply must be between"},
		{"negative order value", func(e *model.ShipmentDelayEvent) { e.OrderValue = -0.01 }, "order_value must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			err := ev.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestShipmentDelayEventBoundaryValues(t *testing.T) {
	ev := validEvent()
	ev.ShipmentID = strings.Repeat("x", 50)
	ev.DelayDays = 365
	ev.InventoryDaysOfSupply = 0
	ev.OrderValue = 0
	assert.NoError(t, ev.Validate())
}

// CanonicalMap feeds json.Marshal, which sorts map keys, so identical events
// always serialize identically.
func TestCanonicalMapStableSerialization(t *testing.T) {
	ev := validEvent()

	first, err := json.Marshal(ev.CanonicalMap())
	require.NoError(t, err)
	second, err := json.Marshal(ev.CanonicalMap())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.True(t, strings.Index(string(first), `"delay_days"`) < strings.Index(string(first), `"shipment_id"`),
		"keys should serialize in sorted order")
	assert.Contains(t, string(first), `"priority_flag":false`)
}

func TestWorkItemStatusTerminal(t *testing.T) {
	assert.False(t, model.StatusNew.Terminal())
	assert.False(t, model.StatusEscalated.Terminal())
	assert.True(t, model.StatusAutoResolved.Terminal())
	assert.True(t, model.StatusHumanApproved.Terminal())
	assert.True(t, model.StatusHumanRejected.Terminal())
}

func TestReviewRequestValidate(t *testing.T) {
	valid := model.ReviewRequest{Action: model.ReviewApprove, Reviewer: "ops@example.com", Comment: "looks fine"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		req    model.ReviewRequest
		errMsg string
	}{
		{"unknown action", model.ReviewRequest{Action: "MAYBE", Reviewer: "r"}, "action must be APPROVE or REJECT"},
		{"empty action", model.ReviewRequest{Reviewer: "r"}, "action must be APPROVE or REJECT"},
		{"missing reviewer", model.ReviewRequest{Action: model.ReviewReject}, "reviewer is required"},
		{"reviewer too long", model.ReviewRequest{Action: model.ReviewApprove, Reviewer: strings.Repeat("r", 121)}, "reviewer exceeds"},
		{"comment too long", model.ReviewRequest{Action: model.ReviewApprove, Reviewer: "r", Comment: strings.Repeat("c", 501)}, "comment exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIngestKnowledgeRequestValidate(t *testing.T) {
	docType := "SLA"
	valid := model.IngestKnowledgeRequest{
		Source:    "sla_v3.pdf",
		ChunkText: "Delays above 2 days trigger escalation.",
		DocType:   &docType,
	}
	require.NoError(t, valid.Validate())

	long := strings.Repeat("x", 300)
	tests := []struct {
		name   string
		req    model.IngestKnowledgeRequest
		errMsg string
	}{
		{"missing source", model.IngestKnowledgeRequest{ChunkText: "t"}, "source is required"},
		{"missing chunk_text", model.IngestKnowledgeRequest{Source: "s"}, "chunk_text is required"},
		{"supplier too long", model.IngestKnowledgeRequest{Source: "s", ChunkText: "t", SupplierID: &long}, "supplier_id exceeds"},
		{"region too long", model.IngestKnowledgeRequest{Source: "s", ChunkText: "t", Region: &long}, "region exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
