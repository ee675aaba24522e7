// Package model defines the core domain types for Handan.
//
// Types correspond directly to database tables and the orchestration
// context embedded in work items. Inputs are validated at the boundary
// so the orchestrator only ever sees well-formed events.
package model

import (
	"fmt"
)

// WorkItemTypeShipmentDelay is the only work-item type currently modeled.
const WorkItemTypeShipmentDelay = "SHIPMENT_DELAY"

// Field length limits for event identifiers.
const (
	MaxShipmentIDLen = 50
	MaxSupplierIDLen = 50
	MaxRegionLen     = 50
)

// MaxEventDays bounds delay_days and inventory_days_of_supply.
const MaxEventDays = 365

// ShipmentDelayEvent is the immutable input to triage. Stored verbatim as
// the work item payload.
type ShipmentDelayEvent struct {
	ShipmentID            string  `json:"shipment_id"`
	SupplierID            string  `json:"supplier_id"`
	OriginalETA           string  `json:"original_eta"`
	UpdatedETA            string  `json:"updated_eta"`
	DelayDays             int     `json:"delay_days"`
	InventoryDaysOfSupply int     `json:"inventory_days_of_supply"`
	OrderValue            float64 `json:"order_value"`
	Region                string  `json:"region"`
	PriorityFlag          bool    `json:"priority_flag"`
}

// Validate checks field presence and ranges. Called at the boundary before
// any orchestration or persistence happens.
func (e ShipmentDelayEvent) Validate() error {
	if e.ShipmentID == "" {
		return fmt.Errorf("shipment_id is required")
	}
	if len(e.ShipmentID) > MaxShipmentIDLen {
		return fmt.Errorf("shipment_id exceeds maximum length of %d characters", MaxShipmentIDLen)
	}
	if e.SupplierID == "" {
		return fmt.Errorf("supplier_id is required")
	}
	if len(e.SupplierID) > MaxSupplierIDLen {
		return fmt.Errorf("supplier_id exceeds maximum length of %d characters", MaxSupplierIDLen)
	}
	if e.Region == "" {
		return fmt.Errorf("region is required")
	}
	if len(e.Region) > MaxRegionLen {
		return fmt.Errorf("region exceeds maximum length of %d characters", MaxRegionLen)
	}
	if e.OriginalETA == "" {
		return fmt.Errorf("original_eta is required")
	}
	if e.UpdatedETA == "" {
		return fmt.Errorf("updated_eta is required")
	}
	if e.DelayDays < 0 || e.DelayDays > MaxEventDays {
		return fmt.Errorf("delay_days must be between 0 and %d", MaxEventDays)
	}
	if e.InventoryDaysOfSupply < 0 || e.InventoryDaysOfSupply > MaxEventDays {
		return fmt.Errorf("inventory_days_of_supply must be between 0 and %d", MaxEventDays)
	}
	if e.OrderValue < 0 {
		return fmt.Errorf("order_value must be non-negative")
	}
	return nil
}

// CanonicalMap returns the event as a plain map so encoding/json emits keys
// in sorted order. Used as the embedding query text so identical events
// always produce identical query strings.
func (e ShipmentDelayEvent) CanonicalMap() map[string]any {
	return map[string]any{
		"shipment_id":              e.ShipmentID,
		"supplier_id":              e.SupplierID,
		"original_eta":             e.OriginalETA,
		"updated_eta":              e.UpdatedETA,
		"delay_days":               e.DelayDays,
		"inventory_days_of_supply": e.InventoryDaysOfSupply,
		"order_value":              e.OrderValue,
		"region":                   e.Region,
		"priority_flag":            e.PriorityFlag,
	}
}
