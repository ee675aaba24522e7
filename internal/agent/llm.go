package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/service/completion"
	"github.com/handan-ai/handan/internal/service/embedding"
)

// LLM agent tuning.
const (
	llmTopK        = 5
	llmTemperature = 0.2
)

const llmSystemPrompt = "You are a structured decision engine. Output JSON only."

// Retriever returns scoped knowledge context for a query embedding.
// Satisfied by the knowledge service.
type Retriever interface {
	Retrieve(ctx context.Context, queryEmbedding pgvector.Vector, scope model.KnowledgeScope, topK int) (string, error)
}

// LLMAgent produces a retrieval-augmented model opinion on an event. Any
// failure in the pipeline (embedding, retrieval, completion, parsing)
// degrades to a safe escalation default; Evaluate never reports an error.
type LLMAgent struct {
	embedder  embedding.Provider
	completer completion.Provider
	retriever Retriever
	logger    *slog.Logger
}

// NewLLMAgent creates an LLMAgent with injected providers.
func NewLLMAgent(embedder embedding.Provider, completer completion.Provider, retriever Retriever, logger *slog.Logger) *LLMAgent {
	return &LLMAgent{
		embedder:  embedder,
		completer: completer,
		retriever: retriever,
		logger:    logger,
	}
}

// Name returns the agent identity used in traces.
func (a *LLMAgent) Name() string { return model.AgentNameLLM }

// llmVerdict is the strict JSON shape the model is instructed to return.
type llmVerdict struct {
	Decision   string `json:"decision"`
	Reason     string `json:"reason"`
	Confidence any    `json:"confidence"`
}

// Evaluate embeds the event, retrieves scoped knowledge, and asks the model
// for a decision. Under any uncertainty the result biases toward escalation.
func (a *LLMAgent) Evaluate(ctx context.Context, event model.ShipmentDelayEvent) model.AgentResult {
	start := time.Now()

	result, err := a.evaluate(ctx, event)
	if err != nil {
		a.logger.Error("llm agent failed, returning safe default",
			"shipment_id", event.ShipmentID,
			"error", err,
		)
		return a.safeDefault()
	}

	a.logger.Info("llm agent evaluated",
		"shipment_id", event.ShipmentID,
		"recommendation", result.Recommendation,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result
}

func (a *LLMAgent) evaluate(ctx context.Context, event model.ShipmentDelayEvent) (model.AgentResult, error) {
	// Canonical sorted-key serialization so identical events always embed
	// the same query text.
	queryText, err := json.Marshal(event.CanonicalMap())
	if err != nil {
		return model.AgentResult{}, fmt.Errorf("agent: marshal event: %w", err)
	}

	queryEmbedding, err := a.embedder.Embed(ctx, string(queryText))
	if err != nil {
		return model.AgentResult{}, fmt.Errorf("agent: embed event: %w", err)
	}

	supplierID := event.SupplierID
	region := event.Region
	knowledgeContext, err := a.retriever.Retrieve(ctx, queryEmbedding, model.KnowledgeScope{
		SupplierID: &supplierID,
		Region:     &region,
	}, llmTopK)
	if err != nil {
		return model.AgentResult{}, fmt.Errorf("agent: retrieve knowledge: %w", err)
	}

	prompt, err := a.buildPrompt(event, knowledgeContext)
	if err != nil {
		return model.AgentResult{}, err
	}

	output, err := a.completer.Complete(ctx, llmSystemPrompt, prompt, llmTemperature)
	if err != nil {
		return model.AgentResult{}, fmt.Errorf("agent: complete: %w", err)
	}

	return a.parseVerdict(output), nil
}

func (a *LLMAgent) buildPrompt(event model.ShipmentDelayEvent, knowledgeContext string) (string, error) {
	eventJSON, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return "", fmt.Errorf("agent: marshal event for prompt: %w", err)
	}

	return fmt.Sprintf(`You are an AI supply chain risk analyst.

Shipment data:
%s

Relevant SLA/SOP rules:
%s

Based on the shipment data and rules:
1. Decide: ESCALATE or AUTO_RESOLVE
2. Explain reasoning
3. Provide confidence between 0 and 1

Return JSON only (no markdown, no extra text):
{
  "decision": "ESCALATE|AUTO_RESOLVE",
  "reason": "string",
  "confidence": 0.0
}`, eventJSON, knowledgeContext), nil
}

// parseVerdict decodes the model output into a well-formed AgentResult.
// Unparsable output, out-of-set decisions, and non-numeric confidences are
// all repaired toward escalation.
func (a *LLMAgent) parseVerdict(output string) model.AgentResult {
	verdict, ok := decodeVerdict(output)
	if !ok {
		return model.AgentResult{
			Name:           a.Name(),
			Score:          0.5,
			Recommendation: model.RecommendEscalate,
			Reason:         "LLM parsing failed (non-JSON response).",
		}
	}

	decision := model.Recommendation(strings.ToUpper(strings.TrimSpace(verdict.Decision)))
	if decision != model.RecommendEscalate && decision != model.RecommendAutoResolve {
		decision = model.RecommendEscalate
	}

	confidence := coerceConfidence(verdict.Confidence)

	reason := strings.TrimSpace(verdict.Reason)
	if reason == "" {
		reason = "No reason provided"
	}

	return model.AgentResult{
		Name:           a.Name(),
		Score:          confidence,
		Recommendation: decision,
		Reason:         reason,
	}
}

func (a *LLMAgent) safeDefault() model.AgentResult {
	return model.AgentResult{
		Name:           a.Name(),
		Score:          0.5,
		Recommendation: model.RecommendEscalate,
		Reason:         "LLM agent failed; safe default escalation.",
	}
}

// decodeVerdict strips any code-fence wrapping and decodes the JSON body.
func decodeVerdict(output string) (llmVerdict, bool) {
	cleaned := strings.TrimSpace(output)
	if cleaned == "" {
		return llmVerdict{}, false
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.Trim(cleaned, "`"))
		if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "json") {
			cleaned = strings.TrimSpace(cleaned[4:])
		}
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return llmVerdict{}, false
	}
	return v, true
}

// coerceConfidence turns whatever the model put in the confidence field
// into a number clamped to [0,1], defaulting to 0.5.
func coerceConfidence(raw any) float64 {
	confidence := 0.5
	switch c := raw.(type) {
	case float64:
		confidence = c
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil {
			confidence = f
		}
	case json.Number:
		if f, err := c.Float64(); err == nil {
			confidence = f
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
