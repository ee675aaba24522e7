package model

// Recommendation is an agent's (or the orchestrator's) verdict on an event.
type Recommendation string

const (
	RecommendAutoResolve Recommendation = "AUTO_RESOLVE"
	RecommendEscalate    Recommendation = "ESCALATE"
)

// Agent name constants, in fixed execution order.
const (
	AgentNameRisk = "RiskAgent"
	AgentNameCost = "CostAgent"
	AgentNameSLA  = "SlaAgent"
	AgentNameLLM  = "LlmDecisionAgent"
)

// AgentResult is a single agent's opinion on an event. Produced fresh on
// every evaluation and never persisted standalone, only inside a trace.
type AgentResult struct {
	Name           string         `json:"name"`
	Score          float64        `json:"score"` // 0.0 to 1.0
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
}

// Override tags for hard escalation rules, checked before voting.
const (
	OverridePriorityFlag   = "PRIORITY_FLAG"
	OverrideHighOrderValue = "HIGH_ORDER_VALUE"
)

// FinalSummary is the aggregation section of an orchestration context.
type FinalSummary struct {
	Decision              Recommendation `json:"decision"`
	WeightedEscalateScore float64        `json:"weighted_escalate_score"`
	AvgScore              float64        `json:"avg_score"`
	Override              string         `json:"override,omitempty"`
	LLMEnabled            bool           `json:"llm_enabled"`
}

// OrchestrationContext is the explainability record attached to a work item:
// every executed agent's opinion in execution order plus the final
// aggregation. Stored as JSONB.
type OrchestrationContext struct {
	AgentTrace []AgentResult `json:"agent_trace"`
	Final      FinalSummary  `json:"final"`
}

// OrchestrationResult is what the orchestrator returns to the lifecycle layer.
type OrchestrationResult struct {
	Decision   Recommendation       `json:"decision"`
	Reason     string               `json:"reason"`
	Confidence float64              `json:"confidence"`
	Context    OrchestrationContext `json:"context"`
}
