// Package agent implements the triage agent ensemble.
//
// Every agent satisfies the same single-method contract: map an event to a
// bounded score, a recommendation, and a human-readable reason. The three
// scoring agents (Risk, Cost, SLA) are pure functions of the event; the LLM
// agent adds a retrieval-augmented model opinion and degrades to a safe
// escalation default on any failure.
package agent

import (
	"context"

	"github.com/handan-ai/handan/internal/model"
)

// Agent evaluates a shipment-delay event and returns its opinion.
// Implementations must always return a well-formed result; an agent that
// can fail internally is expected to fail safe rather than report an error.
type Agent interface {
	Name() string
	Evaluate(ctx context.Context, event model.ShipmentDelayEvent) model.AgentResult
}
