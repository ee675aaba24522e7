package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/handan-ai/handan/internal/model"
)

// Order value buckets.
const (
	costHighOrderValue   = 100000
	costMediumOrderValue = 50000
)

// CostAgent scores financial exposure from the order value.
type CostAgent struct{}

// NewCostAgent creates a CostAgent.
func NewCostAgent() *CostAgent { return &CostAgent{} }

// Name returns the agent identity used in traces.
func (a *CostAgent) Name() string { return model.AgentNameCost }

// Evaluate buckets the order value: high-value orders lean escalation.
func (a *CostAgent) Evaluate(_ context.Context, event model.ShipmentDelayEvent) model.AgentResult {
	value := strconv.FormatFloat(event.OrderValue, 'f', -1, 64)

	switch {
	case event.OrderValue >= costHighOrderValue:
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.9,
			Recommendation: model.RecommendEscalate,
			Reason:         fmt.Sprintf("order_value=%s (high)", value),
		}
	case event.OrderValue >= costMediumOrderValue:
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.6,
			Recommendation: model.RecommendEscalate,
			Reason:         fmt.Sprintf("order_value=%s (medium-high)", value),
		}
	default:
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.2,
			Recommendation: model.RecommendAutoResolve,
			Reason:         fmt.Sprintf("order_value=%s (normal)", value),
		}
	}
}
