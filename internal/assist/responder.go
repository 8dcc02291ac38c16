package assist

import (
	"context"
	"fmt"
	"strings"

	"sugarmate/internal/history"
	"sugarmate/internal/llm"
)

const defaultSystemPrompt = "You are SugarMate, a friendly assistant in a group chat that helps people " +
	"living with diabetes. Keep answers short and practical, and suggest contacting a doctor for anything serious."

type Responder struct {
	client       llm.Client
	history      *history.Manager
	systemPrompt string
	contextTurns int
}

func NewResponder(client llm.Client, h *history.Manager, systemPrompt string) *Responder {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Responder{
		client:       client,
		history:      h,
		systemPrompt: systemPrompt,
		contextTurns: history.DefaultContextTurns,
	}
}

// Reply sends text with the recent conversation as context and records the
// exchange. A failed history write is returned alongside the generated reply.
func (r *Responder) Reply(ctx context.Context, text string) (string, error) {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: r.systemPrompt}}
	msgs = append(msgs, r.history.Recent(r.contextTurns)...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: text})

	resp, err := r.client.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", fmt.Errorf("generate reply: empty content")
	}
	if err := r.history.AppendExchange(text, reply); err != nil {
		return reply, &HistoryError{Err: err}
	}
	return reply, nil
}

// HistoryError marks a reply that was generated but could not be recorded.
type HistoryError struct{ Err error }

func (e *HistoryError) Error() string { return "record exchange: " + e.Err.Error() }
func (e *HistoryError) Unwrap() error { return e.Err }
