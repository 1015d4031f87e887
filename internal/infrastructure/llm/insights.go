// Package llm holds the prompt and response handling shared by the remote
// insight clients.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// SystemPrompt instructs the model on the insight format.
const SystemPrompt = `You are a compliance analyst for a wealth management firm. You review rules,
recent compliance checks, open cases and client documents, and you report the
most important observations.

Return ONLY a valid JSON object, no other text, in this shape:
{"insights": [
  {"type": "alert", "title": "...", "description": "...", "confidence": 85, "action": "..."}
]}

- type: one of alert, suggestion, risk
- title: short headline (required)
- description: one or two sentences
- confidence: integer 0-100
- action: a short imperative the analyst should take

Return at most 5 insights. Return {"insights": []} if nothing stands out.`

// ErrEmptyResponse is returned when the model sends no content.
var ErrEmptyResponse = errors.New("empty response from insight model")

// BuildPrompt renders the user prompt for a snapshot.
func BuildPrompt(snapshot ports.Snapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}
	return "Current compliance state:\n\n" + string(data), nil
}

// rawInsight is the JSON structure for a returned insight.
type rawInsight struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Action      string  `json:"action"`
}

type rawInsightList struct {
	Insights *[]rawInsight `json:"insights"`
}

// ParseInsights decodes a model response into insights. The "insights" key
// is required; an empty list is valid.
func ParseInsights(content string) ([]entities.Insight, error) {
	content = CleanJSONResponse(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	var list rawInsightList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("parsing insights JSON: %w (response: %s)", err, content)
	}
	if list.Insights == nil {
		return nil, fmt.Errorf("parsing insights JSON: missing insights key (response: %s)", content)
	}

	insights := make([]entities.Insight, 0, len(*list.Insights))
	for i, ri := range *list.Insights {
		confidence, err := normalizeConfidence(ri.Confidence)
		if err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
		insights = append(insights, entities.Insight{
			Type:        entities.InsightType(strings.ToLower(strings.TrimSpace(ri.Type))),
			Title:       strings.TrimSpace(ri.Title),
			Description: ri.Description,
			Confidence:  confidence,
			Action:      ri.Action,
		})
	}
	return insights, nil
}

// normalizeConfidence rounds a model confidence to a 0-100 integer.
// Values strictly between 0 and 1 are read as fractions.
func normalizeConfidence(v float64) (int, error) {
	if v > 0 && v < 1 {
		v *= 100
	}
	v = math.Round(v)
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: confidence %v out of range", entities.ErrInvalidInsight, v)
	}
	return int(v), nil
}

// CleanJSONResponse removes markdown code blocks if present.
func CleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
