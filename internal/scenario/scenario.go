// Package scenario defines the fixed simulation batch and its aggregate
// report.
//
// The batch covers the interesting regions of the decision space: clean
// auto-resolves, an escalation from delay plus thin inventory, a
// high-order-value override, and a priority-flag override. Simulation work
// items are tagged by their shipment ID prefix so they can be reset in bulk.
package scenario

import (
	"github.com/google/uuid"

	"github.com/handan-ai/handan/internal/model"
)

// ShipmentIDPrefix tags simulation work items for bulk reset.
const ShipmentIDPrefix = "SIM-"

// MinutesSavedPerAutoResolve estimates the analyst time avoided per
// auto-resolved exception.
const MinutesSavedPerAutoResolve = 15

// Fixed returns the fixed batch of scenario events.
func Fixed() []model.ShipmentDelayEvent {
	return []model.ShipmentDelayEvent{
		// Auto-resolve cases.
		{
			ShipmentID:            "SIM-1001",
			SupplierID:            "SUP-001",
			OriginalETA:           "2026-03-01",
			UpdatedETA:            "2026-03-02",
			DelayDays:             1,
			InventoryDaysOfSupply: 14,
			OrderValue:            12000,
			Region:                "US-CENTRAL",
			PriorityFlag:          false,
		},
		{
			ShipmentID:            "SIM-1002",
			SupplierID:            "SUP-002",
			OriginalETA:           "2026-03-10",
			UpdatedETA:            "2026-03-11",
			DelayDays:             1,
			InventoryDaysOfSupply: 10,
			OrderValue:            30000,
			Region:                "US-EAST",
			PriorityFlag:          false,
		},

		// Escalation from delay plus low inventory.
		{
			ShipmentID:            "SIM-2001",
			SupplierID:            "SUP-003",
			OriginalETA:           "2026-04-01",
			UpdatedETA:            "2026-04-05",
			DelayDays:             4,
			InventoryDaysOfSupply: 4,
			OrderValue:            18000,
			Region:                "US-WEST",
			PriorityFlag:          false,
		},

		// Escalation from high order value.
		{
			ShipmentID:            "SIM-2002",
			SupplierID:            "SUP-004",
			OriginalETA:           "2026-05-01",
			UpdatedETA:            "2026-05-03",
			DelayDays:             2,
			InventoryDaysOfSupply: 12,
			OrderValue:            150000,
			Region:                "US-CENTRAL",
			PriorityFlag:          false,
		},

		// Priority override escalation.
		{
			ShipmentID:            "SIM-3001",
			SupplierID:            "SUP-005",
			OriginalETA:           "2026-06-01",
			UpdatedETA:            "2026-06-02",
			DelayDays:             1,
			InventoryDaysOfSupply: 20,
			OrderValue:            25000,
			Region:                "US-SOUTH",
			PriorityFlag:          true,
		},
	}
}

// ItemOutcome is the per-scenario result inside a simulation report.
type ItemOutcome struct {
	WorkItemID uuid.UUID            `json:"work_item_id"`
	ShipmentID string               `json:"shipment_id"`
	Status     model.WorkItemStatus `json:"status"`
	Decision   model.Recommendation `json:"decision"`
	Confidence float64              `json:"confidence"`
}

// Report aggregates a simulation run.
type Report struct {
	Total                 int           `json:"total"`
	AutoResolved          int           `json:"auto_resolved"`
	Escalated             int           `json:"escalated"`
	AutoResolveRate       float64       `json:"auto_resolve_rate"`
	EscalationRate        float64       `json:"escalation_rate"`
	EstimatedMinutesSaved int           `json:"estimated_minutes_saved"`
	Items                 []ItemOutcome `json:"items"`
}
