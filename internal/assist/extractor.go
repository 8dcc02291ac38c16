// Package assist holds the optional language-model helpers: structured
// health-data extraction and the conversational fallback.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sugarmate/internal/healthlog"
	"sugarmate/internal/llm"
)

const extractorPrompt = "You extract diabetes health data from a chat message. " +
	"If the message reports a blood sugar reading, a meal eaten, or medication taken, " +
	"answer with strict JSON {\"category\": \"sugar|meal|medication\", \"value\": <number or string>}. " +
	"Otherwise answer with the single word null. No markdown, no explanation."

type Extractor struct {
	client llm.Client
}

func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

type extracted struct {
	Category healthlog.Category `json:"category"`
	Value    any                `json:"value"`
}

// Extract returns nil when the message carries no structured health data.
func (e *Extractor) Extract(ctx context.Context, text string) (*healthlog.Entry, error) {
	resp, err := e.client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: extractorPrompt},
		{Role: llm.RoleUser, Content: text},
	})
	if err != nil {
		return nil, fmt.Errorf("extract health data: %w", err)
	}
	return parseExtraction(resp.Content), nil
}

func parseExtraction(content string) *healthlog.Entry {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	var x extracted
	if err := json.Unmarshal([]byte(s), &x); err != nil {
		return nil
	}
	if !x.Category.Valid() || x.Value == nil {
		return nil
	}
	if str, ok := x.Value.(string); ok && strings.TrimSpace(str) == "" {
		return nil
	}
	return &healthlog.Entry{Category: x.Category, Value: x.Value}
}
