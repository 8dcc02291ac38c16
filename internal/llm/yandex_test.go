package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/Morwran/yagpt"
)

type fakeYa struct {
	gotTok  string
	gotMsgs []yagpt.Message
	resp    *yagpt.CompletionResponse
	err     error
}

func (f *fakeYa) CompletionWithCtx(ctx context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	f.gotTok = iamTok
	f.gotMsgs = m
	return f.resp, f.err
}

func (f *fakeYa) Completion(iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	return f.CompletionWithCtx(context.Background(), iamTok, m)
}

func TestYandexClient_Generate(t *testing.T) {
	ya := &fakeYa{resp: &yagpt.CompletionResponse{
		Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Role: "assistant", Content: "drink water"}}},
		Usage:        yagpt.ContentUsage{InputTextTokens: 7, CompletionTokens: 2, TotalTokens: 9},
	}}
	c := &YandexClient{ya: ya, iamToken: "iam-1"}

	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "be kind"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "what now?"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "drink water" || resp.Model != yagpt.YaModelLite {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.PromptTokens != 7 || resp.CompletionTokens != 2 || resp.TotalTokens != 9 {
		t.Fatalf("usage not mapped: %+v", resp)
	}
	if ya.gotTok != "iam-1" {
		t.Fatalf("iam token not forwarded: %q", ya.gotTok)
	}

	want := []yagpt.Message{
		{Role: "system", Content: "be kind"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "what now?"},
	}
	if len(ya.gotMsgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(ya.gotMsgs), len(want))
	}
	for i := range want {
		if ya.gotMsgs[i] != want[i] {
			t.Fatalf("message %d: got %+v, want %+v", i, ya.gotMsgs[i], want[i])
		}
	}
}

func TestYandexClient_EmptyAlternatives(t *testing.T) {
	c := &YandexClient{ya: &fakeYa{resp: &yagpt.CompletionResponse{}}, iamToken: "t"}
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error for empty alternatives")
	}

	c = &YandexClient{ya: &fakeYa{}, iamToken: "t"}
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error for nil response")
	}
}

func TestYandexClient_Error(t *testing.T) {
	c := &YandexClient{ya: &fakeYa{err: errors.New("quota exceeded")}, iamToken: "t"}
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error")
	}
}
