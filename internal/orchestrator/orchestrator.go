// Package orchestrator combines the agent ensemble into one decision.
//
// The protocol: always run the three scoring agents in fixed order,
// conditionally run the LLM agent, check hard overrides, and only then
// fall through to weighted voting. Overrides bypass voting but not
// evaluation: the trace always reflects the full ensemble opinion so a
// reviewer can see what the agents would have said.
package orchestrator

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/handan-ai/handan/internal/agent"
	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/telemetry"
)

// Voting parameters. Deterministic agents each carry one vote; the LLM
// opinion is weighted heavier because it has seen the retrieved knowledge.
const (
	deterministicVoteWeight = 1.0
	llmVoteWeight           = 1.5
	escalateThreshold       = 2.0
)

// highOrderValueThreshold triggers the HIGH_ORDER_VALUE hard override.
const highOrderValueThreshold = 100000

// Orchestrator runs the agent ensemble and applies the override/voting
// protocol. The llm agent is nil when the LLM path is disabled.
type Orchestrator struct {
	scoring []agent.Agent
	llm     agent.Agent
	logger  *slog.Logger

	duration metric.Float64Histogram
}

// New creates an Orchestrator. The three scoring agents are fixed; pass a
// nil llm to disable the LLM path entirely.
func New(llm agent.Agent, logger *slog.Logger) *Orchestrator {
	meter := telemetry.Meter("handan/orchestrator")
	dur, _ := meter.Float64Histogram("handan.orchestration.duration",
		metric.WithDescription("Time to run the full agent ensemble (ms)"),
		metric.WithUnit("ms"),
	)
	return &Orchestrator{
		scoring: []agent.Agent{
			agent.NewRiskAgent(),
			agent.NewCostAgent(),
			agent.NewSLAAgent(),
		},
		llm:      llm,
		logger:   logger,
		duration: dur,
	}
}

// LLMEnabled reports whether the LLM path is configured.
func (o *Orchestrator) LLMEnabled() bool { return o.llm != nil }

// Orchestrate evaluates every agent against the event and aggregates their
// opinions into a final decision with a full explainability trace.
func (o *Orchestrator) Orchestrate(ctx context.Context, event model.ShipmentDelayEvent) model.OrchestrationResult {
	start := time.Now()

	results := make([]model.AgentResult, 0, len(o.scoring)+1)
	for _, a := range o.scoring {
		results = append(results, a.Evaluate(ctx, event))
	}

	if o.llm != nil {
		// The LLM agent fails safe internally; a panic deeper in its
		// pipeline drops it from the trace rather than injecting a
		// placeholder opinion.
		if r, ok := o.safeEvaluate(ctx, event); ok {
			results = append(results, r)
		}
	}

	weightedScore := 0.0
	scoreSum := 0.0
	var escalateReasons []string
	for _, r := range results {
		scoreSum += r.Score
		if r.Recommendation == model.RecommendEscalate {
			weight := deterministicVoteWeight
			if r.Name == model.AgentNameLLM {
				weight = llmVoteWeight
			}
			weightedScore += weight
			escalateReasons = append(escalateReasons, r.Reason)
		}
	}
	avgScore := scoreSum / float64(len(results))

	final := model.FinalSummary{
		WeightedEscalateScore: weightedScore,
		AvgScore:              avgScore,
		LLMEnabled:            o.llm != nil,
	}

	// Hard overrides, in fixed priority, short-circuit voting entirely.
	if tag := overrideTag(event); tag != "" {
		final.Decision = model.RecommendEscalate
		final.Override = tag

		result := model.OrchestrationResult{
			Decision:   model.RecommendEscalate,
			Reason:     "Escalated due to override: " + tag,
			Confidence: 1.0,
			Context: model.OrchestrationContext{
				AgentTrace: results,
				Final:      final,
			},
		}
		o.finish(ctx, event, result, start)
		return result
	}

	decision := model.RecommendAutoResolve
	if weightedScore >= escalateThreshold {
		decision = model.RecommendEscalate
	}
	final.Decision = decision

	reason := "Auto-resolved: low combined risk across agents."
	if len(escalateReasons) > 0 {
		reason = "Escalated because: " + strings.Join(escalateReasons, " | ")
	}

	result := model.OrchestrationResult{
		Decision:   decision,
		Reason:     reason,
		Confidence: confidenceFromAvg(avgScore),
		Context: model.OrchestrationContext{
			AgentTrace: results,
			Final:      final,
		},
	}
	o.finish(ctx, event, result, start)
	return result
}

// safeEvaluate shields the orchestrator from a panicking LLM pipeline.
// Returns ok=false when the agent could not produce an opinion at all.
func (o *Orchestrator) safeEvaluate(ctx context.Context, event model.ShipmentDelayEvent) (result model.AgentResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("llm agent panicked, dropping from trace",
				"shipment_id", event.ShipmentID,
				"panic", r,
			)
			ok = false
		}
	}()
	return o.llm.Evaluate(ctx, event), true
}

// overrideTag returns the hard-override tag for the event, or "" when no
// override applies. Priority shipments outrank order value.
func overrideTag(event model.ShipmentDelayEvent) string {
	if event.PriorityFlag {
		return model.OverridePriorityFlag
	}
	if event.OrderValue >= highOrderValueThreshold {
		return model.OverrideHighOrderValue
	}
	return ""
}

// confidenceFromAvg anchors confidence to a 0.5 floor and caps it at 1.0,
// rounded to 3 decimals. Even a minimally-risky ensemble reports moderate
// confidence.
func confidenceFromAvg(avgScore float64) float64 {
	c := 0.5 + avgScore/2
	if c > 1.0 {
		c = 1.0
	}
	return math.Round(c*1000) / 1000
}

func (o *Orchestrator) finish(ctx context.Context, event model.ShipmentDelayEvent, result model.OrchestrationResult, start time.Time) {
	o.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
	o.logger.Info("orchestration complete",
		"shipment_id", event.ShipmentID,
		"decision", result.Decision,
		"confidence", result.Confidence,
		"override", result.Context.Final.Override,
		"agents", len(result.Context.AgentTrace),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
