package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/handan-ai/handan/internal/model"
)

// Risk thresholds.
const (
	riskDelayHighDays     = 3
	riskDelayModerateDays = 2
	riskLowInventoryDays  = 7
	riskEscalateScore     = 0.6
)

// RiskAgent scores operational risk from delay length and inventory buffer.
type RiskAgent struct{}

// NewRiskAgent creates a RiskAgent.
func NewRiskAgent() *RiskAgent { return &RiskAgent{} }

// Name returns the agent identity used in traces.
func (a *RiskAgent) Name() string { return model.AgentNameRisk }

// Evaluate applies the risk heuristic: long delays and thin inventory each
// add to the score; the score clamps to [0,1] and escalates at 0.6.
func (a *RiskAgent) Evaluate(_ context.Context, event model.ShipmentDelayEvent) model.AgentResult {
	score := 0.0
	var reasons []string

	if event.DelayDays >= riskDelayHighDays {
		score += 0.5
		reasons = append(reasons, fmt.Sprintf("delay_days=%d (high)", event.DelayDays))
	} else if event.DelayDays == riskDelayModerateDays {
		score += 0.25
		reasons = append(reasons, fmt.Sprintf("delay_days=%d (moderate)", event.DelayDays))
	}

	if event.InventoryDaysOfSupply < riskLowInventoryDays {
		score += 0.6
		reasons = append(reasons, fmt.Sprintf("inventory_days=%d (low)", event.InventoryDaysOfSupply))
	}

	if score > 1.0 {
		score = 1.0
	}

	rec := model.RecommendAutoResolve
	if score >= riskEscalateScore {
		rec = model.RecommendEscalate
	}

	reason := "Low operational risk"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " | ")
	}

	return model.AgentResult{
		Name:           a.Name(),
		Score:          score,
		Recommendation: rec,
		Reason:         reason,
	}
}
