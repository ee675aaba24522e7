package orchestrator_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/orchestrator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(delay, inventory int, orderValue float64, priority bool) model.ShipmentDelayEvent {
	return model.ShipmentDelayEvent{
		ShipmentID:            "SHP-1",
		SupplierID:            "SUP-1",
		OriginalETA:           "2026-08-01",
		UpdatedETA:            "2026-08-05",
		DelayDays:             delay,
		InventoryDaysOfSupply: inventory,
		OrderValue:            orderValue,
		Region:                "EU",
		PriorityFlag:          priority,
	}
}

// stubLLM is a fixed-opinion agent standing in for the LLM path.
type stubLLM struct {
	result model.AgentResult
	panics bool
}

func (s *stubLLM) Name() string { return model.AgentNameLLM }

func (s *stubLLM) Evaluate(_ context.Context, _ model.ShipmentDelayEvent) model.AgentResult {
	if s.panics {
		panic("pipeline blew up")
	}
	return s.result
}

func TestOrchestratePriorityFlagOverride(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	// Override fires regardless of the other fields.
	for _, ev := range []model.ShipmentDelayEvent{
		event(0, 30, 100, true),
		event(5, 2, 500000, true),
	} {
		got := o.Orchestrate(context.Background(), ev)

		assert.Equal(t, model.RecommendEscalate, got.Decision)
		assert.Equal(t, "Escalated due to override: PRIORITY_FLAG", got.Reason)
		assert.InDelta(t, 1.0, got.Confidence, 1e-9)
		assert.Equal(t, model.OverridePriorityFlag, got.Context.Final.Override)
		// Agents still execute and populate the trace.
		assert.Len(t, got.Context.AgentTrace, 3)
	}
}

func TestOrchestrateHighOrderValueOverride(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	got := o.Orchestrate(context.Background(), event(0, 30, 150000, false))

	assert.Equal(t, model.RecommendEscalate, got.Decision)
	assert.Equal(t, "Escalated due to override: HIGH_ORDER_VALUE", got.Reason)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, model.OverrideHighOrderValue, got.Context.Final.Override)
}

func TestOrchestratePriorityOutranksOrderValue(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	got := o.Orchestrate(context.Background(), event(0, 30, 500000, true))

	assert.Equal(t, model.OverridePriorityFlag, got.Context.Final.Override)
}

func TestOrchestrateAutoResolve(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	// Low delay, healthy inventory, normal order value: every agent votes
	// AUTO_RESOLVE.
	got := o.Orchestrate(context.Background(), event(1, 14, 12000, false))

	assert.Equal(t, model.RecommendAutoResolve, got.Decision)
	assert.Equal(t, "Auto-resolved: low combined risk across agents.", got.Reason)
	assert.Empty(t, got.Context.Final.Override)
	assert.InDelta(t, 0.0, got.Context.Final.WeightedEscalateScore, 1e-9)

	require.Len(t, got.Context.AgentTrace, 3)
	for _, r := range got.Context.AgentTrace {
		assert.Equal(t, model.RecommendAutoResolve, r.Recommendation)
	}

	// avg = (0.0 + 0.2 + 0.25) / 3 = 0.15; confidence = 0.5 + 0.15/2.
	assert.InDelta(t, 0.575, got.Confidence, 1e-9)
}

func TestOrchestrateWeightedVotingEscalates(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	// Risk escalates (delay>=3 plus inventory<7, score clamps to 1.0) and
	// SLA escalates (delay exceeds buffer): weighted score 2.0 meets the
	// threshold without an override.
	got := o.Orchestrate(context.Background(), event(4, 4, 18000, false))

	assert.Equal(t, model.RecommendEscalate, got.Decision)
	assert.Empty(t, got.Context.Final.Override)
	assert.InDelta(t, 2.0, got.Context.Final.WeightedEscalateScore, 1e-9)
	assert.Contains(t, got.Reason, "Escalated because: ")
	assert.Contains(t, got.Reason, "delay_days=4 (high) | inventory_days=4 (low)")
	assert.Contains(t, got.Reason, "delay_days=4 exceeds SLA buffer")

	// avg = (1.0 + 0.2 + 0.85) / 3; confidence rounds to 3 decimals.
	assert.InDelta(t, 0.842, got.Confidence, 1e-9)
}

func TestOrchestrateSingleEscalateVoteIsNotEnough(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	// Only Cost escalates (medium-high order value): weighted score 1.0,
	// below the threshold, so the ensemble still auto-resolves. The reason
	// nevertheless surfaces the dissenting vote.
	got := o.Orchestrate(context.Background(), event(1, 14, 60000, false))

	assert.Equal(t, model.RecommendAutoResolve, got.Decision)
	assert.InDelta(t, 1.0, got.Context.Final.WeightedEscalateScore, 1e-9)
	assert.Equal(t, "Escalated because: order_value=60000 (medium-high)", got.Reason)
}

func TestOrchestrateLLMVoteTipsTheScale(t *testing.T) {
	llm := &stubLLM{result: model.AgentResult{
		Name:           model.AgentNameLLM,
		Score:          0.8,
		Recommendation: model.RecommendEscalate,
		Reason:         "Historical SLA breaches for this supplier.",
	}}
	o := orchestrator.New(llm, testLogger())

	// Cost escalates (1.0) plus the LLM (1.5): weighted score 2.5.
	got := o.Orchestrate(context.Background(), event(1, 14, 60000, false))

	assert.Equal(t, model.RecommendEscalate, got.Decision)
	assert.InDelta(t, 2.5, got.Context.Final.WeightedEscalateScore, 1e-9)
	assert.Len(t, got.Context.AgentTrace, 4)
	assert.True(t, got.Context.Final.LLMEnabled)
	assert.Contains(t, got.Reason, "Historical SLA breaches for this supplier.")
}

func TestOrchestrateTraceLength(t *testing.T) {
	t.Run("llm disabled", func(t *testing.T) {
		o := orchestrator.New(nil, testLogger())
		got := o.Orchestrate(context.Background(), event(1, 14, 12000, false))
		assert.Len(t, got.Context.AgentTrace, 3)
		assert.False(t, got.Context.Final.LLMEnabled)
	})

	t.Run("llm enabled and successful", func(t *testing.T) {
		llm := &stubLLM{result: model.AgentResult{
			Name:           model.AgentNameLLM,
			Score:          0.3,
			Recommendation: model.RecommendAutoResolve,
			Reason:         "Routine delay.",
		}}
		o := orchestrator.New(llm, testLogger())
		got := o.Orchestrate(context.Background(), event(1, 14, 12000, false))
		assert.Len(t, got.Context.AgentTrace, 4)
		assert.True(t, got.Context.Final.LLMEnabled)
	})

	t.Run("llm panic drops it from the trace", func(t *testing.T) {
		o := orchestrator.New(&stubLLM{panics: true}, testLogger())
		got := o.Orchestrate(context.Background(), event(1, 14, 12000, false))
		assert.Len(t, got.Context.AgentTrace, 3)
		// The flag still records that the path was configured.
		assert.True(t, got.Context.Final.LLMEnabled)
		assert.Equal(t, model.RecommendAutoResolve, got.Decision)
	})
}

func TestOrchestrateDeterministicWithoutLLM(t *testing.T) {
	o := orchestrator.New(nil, testLogger())
	ev := event(2, 5, 55000, false)

	first := o.Orchestrate(context.Background(), ev)
	second := o.Orchestrate(context.Background(), ev)

	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Context, second.Context)
}

func TestOrchestrateTraceOrder(t *testing.T) {
	llm := &stubLLM{result: model.AgentResult{
		Name:           model.AgentNameLLM,
		Score:          0.5,
		Recommendation: model.RecommendAutoResolve,
		Reason:         "ok",
	}}
	o := orchestrator.New(llm, testLogger())

	got := o.Orchestrate(context.Background(), event(1, 14, 12000, false))

	require.Len(t, got.Context.AgentTrace, 4)
	assert.Equal(t, model.AgentNameRisk, got.Context.AgentTrace[0].Name)
	assert.Equal(t, model.AgentNameCost, got.Context.AgentTrace[1].Name)
	assert.Equal(t, model.AgentNameSLA, got.Context.AgentTrace[2].Name)
	assert.Equal(t, model.AgentNameLLM, got.Context.AgentTrace[3].Name)
}

func TestConfidenceBounds(t *testing.T) {
	o := orchestrator.New(nil, testLogger())

	tests := []struct {
		name string
		ev   model.ShipmentDelayEvent
		want float64
	}{
		// avg = (0 + 0.2 + 0.25)/3 = 0.15 -> 0.575
		{"minimal risk", event(0, 30, 100, false), 0.575},
		// avg = (1.0 + 0.6 + 0.85)/3 = 0.816666... -> 0.908
		{"heavy risk", event(5, 2, 60000, false), 0.908},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.Orchestrate(context.Background(), tt.ev)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
			assert.GreaterOrEqual(t, got.Confidence, 0.5)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}
