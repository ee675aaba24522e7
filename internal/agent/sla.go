package agent

import (
	"context"
	"fmt"

	"github.com/handan-ai/handan/internal/model"
)

// slaDelayBufferDays is the contractual delay tolerance.
const slaDelayBufferDays = 2

// SLAAgent scores contractual exposure from the priority flag and delay.
type SLAAgent struct{}

// NewSLAAgent creates an SLAAgent.
func NewSLAAgent() *SLAAgent { return &SLAAgent{} }

// Name returns the agent identity used in traces.
func (a *SLAAgent) Name() string { return model.AgentNameSLA }

// Evaluate escalates priority shipments outright and any delay beyond the
// SLA buffer.
func (a *SLAAgent) Evaluate(_ context.Context, event model.ShipmentDelayEvent) model.AgentResult {
	if event.PriorityFlag {
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.95,
			Recommendation: model.RecommendEscalate,
			Reason:         "priority_flag=true",
		}
	}
	if event.DelayDays > slaDelayBufferDays {
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.85,
			Recommendation: model.RecommendEscalate,
			Reason:         fmt.Sprintf("delay_days=%d exceeds SLA buffer", event.DelayDays),
		}
	}
	return model.AgentResult{
		Name:           a.Name(),
		Score:          0.25,
		Recommendation: model.RecommendAutoResolve,
		Reason:         "Within SLA buffer",
	}
}
