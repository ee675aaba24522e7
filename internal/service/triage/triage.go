// Package triage drives the work-item lifecycle and decision ledger.
//
// State machine: NEW -> {AUTO_RESOLVED, ESCALATED} -> {HUMAN_APPROVED,
// HUMAN_REJECTED}. Run executes the orchestrator exactly once against a NEW
// item; review is valid only on ESCALATED items. Every transition appends
// to the append-only decision ledger in the same transaction as the status
// change.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/orchestrator"
	"github.com/handan-ai/handan/internal/scenario"
	"github.com/handan-ai/handan/internal/storage"
	"github.com/handan-ai/handan/internal/telemetry"
)

// InvalidStateError reports an operation attempted against a work item in
// the wrong lifecycle state. Carries the current status so the caller can
// surface it.
type InvalidStateError struct {
	Op       string
	Required model.WorkItemStatus
	Current  model.WorkItemStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("triage: %s requires status %s, got %s", e.Op, e.Required, e.Current)
}

// Service encapsulates work-item lifecycle operations.
type Service struct {
	db     *storage.DB
	orch   *orchestrator.Orchestrator
	logger *slog.Logger

	runDuration metric.Float64Histogram
}

// New creates a triage Service.
func New(db *storage.DB, orch *orchestrator.Orchestrator, logger *slog.Logger) *Service {
	meter := telemetry.Meter("handan/triage")
	runDur, _ := meter.Float64Histogram("handan.triage.run.duration",
		metric.WithDescription("Time to run triage for one work item (ms)"),
		metric.WithUnit("ms"),
	)
	return &Service{
		db:          db,
		orch:        orch,
		logger:      logger,
		runDuration: runDur,
	}
}

// Create validates the event and persists a new work item in status NEW.
func (s *Service) Create(ctx context.Context, event model.ShipmentDelayEvent) (model.WorkItem, error) {
	if err := event.Validate(); err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	wi, err := s.db.CreateWorkItem(ctx, event)
	if err != nil {
		return model.WorkItem{}, err
	}

	s.logger.Info("work item created",
		"work_item_id", wi.ID,
		"shipment_id", event.ShipmentID,
	)
	return wi, nil
}

// Get retrieves a work item by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.WorkItem, error) {
	return s.db.GetWorkItem(ctx, id)
}

// Run executes orchestration exactly once against the item's payload,
// transitions it to AUTO_RESOLVED or ESCALATED, stores the explainability
// context, and appends an automated ledger entry. Valid only from NEW:
// re-runs against an already-decided item are rejected.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (model.RunResult, error) {
	start := time.Now()

	wi, err := s.db.GetWorkItem(ctx, id)
	if err != nil {
		return model.RunResult{}, err
	}
	if wi.Status != model.StatusNew {
		return model.RunResult{}, &InvalidStateError{Op: "run", Required: model.StatusNew, Current: wi.Status}
	}

	result := s.orch.Orchestrate(ctx, wi.Payload)

	status := model.StatusEscalated
	if result.Decision == model.RecommendAutoResolve {
		status = model.StatusAutoResolved
	}

	_, err = s.db.TransitionWorkItem(ctx, wi.ID, status, &result.Context, model.Decision{
		Decision:   string(result.Decision),
		Reason:     result.Reason,
		Confidence: result.Confidence,
	})
	if err != nil {
		return model.RunResult{}, err
	}

	s.runDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	s.logger.Info("work item run complete",
		"work_item_id", wi.ID,
		"shipment_id", wi.Payload.ShipmentID,
		"status", status,
		"confidence", result.Confidence,
	)

	return model.RunResult{
		WorkItemID: wi.ID,
		NewStatus:  status,
		Decision:   result.Decision,
		Reason:     result.Reason,
		Confidence: result.Confidence,
	}, nil
}

// Review applies a human verdict to an escalated work item and appends a
// ledger entry attributed to the reviewer with confidence 1.0. Valid only
// from ESCALATED; on any other status nothing is written.
func (s *Service) Review(ctx context.Context, id uuid.UUID, req model.ReviewRequest) (model.ReviewResult, error) {
	if err := req.Validate(); err != nil {
		return model.ReviewResult{}, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	wi, err := s.db.GetWorkItem(ctx, id)
	if err != nil {
		return model.ReviewResult{}, err
	}
	if wi.Status != model.StatusEscalated {
		return model.ReviewResult{}, &InvalidStateError{Op: "review", Required: model.StatusEscalated, Current: wi.Status}
	}

	status := model.StatusHumanRejected
	if req.Action == model.ReviewApprove {
		status = model.StatusHumanApproved
	}

	reviewer := req.Reviewer
	_, err = s.db.TransitionWorkItem(ctx, wi.ID, status, nil, model.Decision{
		Decision:   string(req.Action),
		Reason:     req.Comment,
		Confidence: 1.0,
		CreatedBy:  &reviewer,
	})
	if err != nil {
		return model.ReviewResult{}, err
	}

	s.logger.Info("work item reviewed",
		"work_item_id", wi.ID,
		"action", req.Action,
		"reviewer", reviewer,
	)

	return model.ReviewResult{
		WorkItemID:  wi.ID,
		FinalStatus: status,
		Reviewer:    reviewer,
	}, nil
}

// Trace returns a work item together with its full decision ledger, oldest
// entry first.
func (s *Service) Trace(ctx context.Context, id uuid.UUID) (model.WorkItemTrace, error) {
	wi, err := s.db.GetWorkItem(ctx, id)
	if err != nil {
		return model.WorkItemTrace{}, err
	}

	decisions, err := s.db.GetDecisionsByWorkItem(ctx, id)
	if err != nil {
		return model.WorkItemTrace{}, err
	}

	return model.WorkItemTrace{WorkItem: wi, Decisions: decisions}, nil
}

// Simulate creates and runs a work item for every fixed scenario event and
// reports aggregate auto-resolve/escalation rates plus estimated analyst
// minutes saved. Scenarios run strictly sequentially.
func (s *Service) Simulate(ctx context.Context) (scenario.Report, error) {
	events := scenario.Fixed()
	report := scenario.Report{
		Total: len(events),
		Items: make([]scenario.ItemOutcome, 0, len(events)),
	}

	for _, event := range events {
		wi, err := s.Create(ctx, event)
		if err != nil {
			return scenario.Report{}, fmt.Errorf("triage: create scenario %s: %w", event.ShipmentID, err)
		}

		run, err := s.Run(ctx, wi.ID)
		if err != nil {
			return scenario.Report{}, fmt.Errorf("triage: run scenario %s: %w", event.ShipmentID, err)
		}

		if run.NewStatus == model.StatusAutoResolved {
			report.AutoResolved++
		} else {
			report.Escalated++
		}
		report.Items = append(report.Items, scenario.ItemOutcome{
			WorkItemID: wi.ID,
			ShipmentID: event.ShipmentID,
			Status:     run.NewStatus,
			Decision:   run.Decision,
			Confidence: run.Confidence,
		})
	}

	report.AutoResolveRate = float64(report.AutoResolved) / float64(report.Total)
	report.EscalationRate = float64(report.Escalated) / float64(report.Total)
	report.EstimatedMinutesSaved = report.AutoResolved * scenario.MinutesSavedPerAutoResolve

	s.logger.Info("simulation complete",
		"total", report.Total,
		"auto_resolved", report.AutoResolved,
		"escalated", report.Escalated,
	)
	return report, nil
}

// ResetSimulation deletes every work item created by simulation runs,
// identified by the scenario shipment-ID prefix. Ledger entries cascade.
func (s *Service) ResetSimulation(ctx context.Context) (int64, error) {
	n, err := s.db.DeleteSimulationWorkItems(ctx, scenario.ShipmentIDPrefix)
	if err != nil {
		return 0, err
	}
	s.logger.Info("simulation data reset", "work_items_deleted", n)
	return n, nil
}
