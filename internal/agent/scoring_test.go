package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handan-ai/handan/internal/agent"
	"github.com/handan-ai/handan/internal/model"
)

func baseEvent() model.ShipmentDelayEvent {
	return model.ShipmentDelayEvent{
		ShipmentID:            "SHP-1",
		SupplierID:            "SUP-1",
		OriginalETA:           "2026-08-01",
		UpdatedETA:            "2026-08-03",
		DelayDays:             1,
		InventoryDaysOfSupply: 14,
		OrderValue:            12000,
		Region:                "EU",
		PriorityFlag:          false,
	}
}

func TestRiskAgent(t *testing.T) {
	tests := []struct {
		name      string
		delay     int
		inventory int
		score     float64
		rec       model.Recommendation
		reason    string
	}{
		{"no triggers", 1, 14, 0.0, model.RecommendAutoResolve, "Low operational risk"},
		{"moderate delay only", 2, 14, 0.25, model.RecommendAutoResolve, "delay_days=2 (moderate)"},
		{"high delay only", 3, 14, 0.5, model.RecommendAutoResolve, "delay_days=3 (high)"},
		{"low inventory only", 0, 6, 0.6, model.RecommendEscalate, "inventory_days=6 (low)"},
		{"moderate delay and low inventory", 2, 3, 0.85, model.RecommendEscalate, "delay_days=2 (moderate) | inventory_days=3 (low)"},
		{"high delay and low inventory clamps", 4, 4, 1.0, model.RecommendEscalate, "delay_days=4 (high) | inventory_days=4 (low)"},
		{"inventory boundary is exclusive", 0, 7, 0.0, model.RecommendAutoResolve, "Low operational risk"},
	}

	a := agent.NewRiskAgent()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := baseEvent()
			ev.DelayDays = tt.delay
			ev.InventoryDaysOfSupply = tt.inventory

			got := a.Evaluate(context.Background(), ev)
			assert.Equal(t, model.AgentNameRisk, got.Name)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.rec, got.Recommendation)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestCostAgent(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		score  float64
		rec    model.Recommendation
		reason string
	}{
		{"normal", 12000, 0.2, model.RecommendAutoResolve, "order_value=12000 (normal)"},
		{"medium-high boundary", 50000, 0.6, model.RecommendEscalate, "order_value=50000 (medium-high)"},
		{"high boundary", 100000, 0.9, model.RecommendEscalate, "order_value=100000 (high)"},
		{"high", 150000, 0.9, model.RecommendEscalate, "order_value=150000 (high)"},
		{"just under medium", 49999.99, 0.2, model.RecommendAutoResolve, "order_value=49999.99 (normal)"},
	}

	a := agent.NewCostAgent()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := baseEvent()
			ev.OrderValue = tt.value

			got := a.Evaluate(context.Background(), ev)
			assert.Equal(t, model.AgentNameCost, got.Name)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.rec, got.Recommendation)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestSLAAgent(t *testing.T) {
	a := agent.NewSLAAgent()

	t.Run("priority flag wins regardless of delay", func(t *testing.T) {
		ev := baseEvent()
		ev.PriorityFlag = true
		ev.DelayDays = 0

		got := a.Evaluate(context.Background(), ev)
		assert.Equal(t, model.AgentNameSLA, got.Name)
		assert.InDelta(t, 0.95, got.Score, 1e-9)
		assert.Equal(t, model.RecommendEscalate, got.Recommendation)
		assert.Equal(t, "priority_flag=true", got.Reason)
	})

	t.Run("delay beyond buffer escalates", func(t *testing.T) {
		ev := baseEvent()
		ev.DelayDays = 3

		got := a.Evaluate(context.Background(), ev)
		assert.InDelta(t, 0.85, got.Score, 1e-9)
		assert.Equal(t, model.RecommendEscalate, got.Recommendation)
		assert.Equal(t, "delay_days=3 exceeds SLA buffer", got.Reason)
	})

	t.Run("within buffer auto-resolves", func(t *testing.T) {
		ev := baseEvent()
		ev.DelayDays = 2

		got := a.Evaluate(context.Background(), ev)
		assert.InDelta(t, 0.25, got.Score, 1e-9)
		assert.Equal(t, model.RecommendAutoResolve, got.Recommendation)
		assert.Equal(t, "Within SLA buffer", got.Reason)
	})
}

// Scoring agents are pure: the same event always yields the same result.
func TestScoringAgentsDeterministic(t *testing.T) {
	agents := []agent.Agent{
		agent.NewRiskAgent(),
		agent.NewCostAgent(),
		agent.NewSLAAgent(),
	}
	ev := baseEvent()
	ev.DelayDays = 4
	ev.InventoryDaysOfSupply = 4
	ev.OrderValue = 75000

	for _, a := range agents {
		first := a.Evaluate(context.Background(), ev)
		second := a.Evaluate(context.Background(), ev)
		assert.Equal(t, first, second, "agent %s", a.Name())
	}
}
