package history

import (
	"path/filepath"
	"testing"

	"sugarmate/internal/llm"
	"sugarmate/internal/storage"
)

func newManager(t *testing.T, p string) *Manager {
	t.Helper()
	doc, err := storage.NewJSONFile(p)
	if err != nil {
		t.Fatalf("init doc: %v", err)
	}
	return NewManager(doc, nil)
}

func TestHistoryAppendRecentPersist(t *testing.T) {
	p := filepath.Join(t.TempDir(), "chat_history.json")
	h := newManager(t, p)

	if err := h.AppendExchange("hello", "hi"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := h.AppendExchange("how are you", "fine"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := h.AppendExchange("bye", "see you"); err != nil {
		t.Fatalf("append: %v", err)
	}

	if n := len(h.All()); n != 6 {
		t.Fatalf("want 6 turns, got %d", n)
	}

	recent := h.Recent(DefaultContextTurns)
	if len(recent) != 5 {
		t.Fatalf("want 5 recent turns, got %d", len(recent))
	}
	if recent[0].Role != llm.RoleAssistant || recent[0].Content != "hi" {
		t.Fatalf("unexpected oldest recent turn: %+v", recent[0])
	}
	if recent[4].Role != llm.RoleAssistant || recent[4].Content != "see you" {
		t.Fatalf("unexpected newest recent turn: %+v", recent[4])
	}

	// full history survives a restart
	h2 := newManager(t, p)
	all := h2.All()
	if len(all) != 6 || all[0].Role != llm.RoleUser || all[0].Content != "hello" {
		t.Fatalf("history not persisted: %+v", all)
	}
}

func TestRecentShortHistory(t *testing.T) {
	h := newManager(t, filepath.Join(t.TempDir(), "h.json"))
	if got := h.Recent(5); len(got) != 0 {
		t.Fatalf("empty history: %+v", got)
	}
	_ = h.AppendExchange("a", "b")
	if got := h.Recent(5); len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got := h.Recent(0); got != nil {
		t.Fatalf("n=0 must return nil")
	}
}

func TestRecentReturnsCopy(t *testing.T) {
	h := newManager(t, filepath.Join(t.TempDir(), "h.json"))
	_ = h.AppendExchange("hello", "hi")
	r := h.Recent(2)
	r[0] = llm.Message{Role: llm.RoleUser, Content: "mutated"}
	if h.Recent(2)[0].Content != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}
}
