// Package history keeps the conversation with the language model. The full
// history is persisted; only the most recent turns are sent back as context.
package history

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sugarmate/internal/llm"
	"sugarmate/internal/storage"
)

// DefaultContextTurns is how many trailing turns accompany a new prompt.
const DefaultContextTurns = 5

type Manager struct {
	doc    storage.Document
	logger *zap.Logger

	mu    sync.RWMutex
	turns []llm.Message
}

func NewManager(doc storage.Document, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{doc: doc, logger: logger}
	if err := m.Reload(); err != nil {
		logger.Warn("chat history unreadable, starting empty", zap.Error(err))
	}
	return m
}

func (m *Manager) Reload() error {
	var turns []llm.Message
	err := m.doc.Load(&turns)
	if err != nil {
		turns = nil
	}
	m.mu.Lock()
	m.turns = turns
	m.mu.Unlock()
	return err
}

func (m *Manager) Flush() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushLocked()
}

// AppendExchange records a user message and the assistant reply with a
// single rewrite of the document.
func (m *Manager) AppendExchange(userText, assistantText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: assistantText},
	)
	return m.flushLocked()
}

// Recent returns up to n trailing turns, oldest first.
func (m *Manager) Recent(n int) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(m.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]llm.Message, len(m.turns)-start)
	copy(out, m.turns[start:])
	return out
}

func (m *Manager) All() []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]llm.Message, len(m.turns))
	copy(out, m.turns)
	return out
}

func (m *Manager) flushLocked() error {
	turns := m.turns
	if turns == nil {
		turns = []llm.Message{}
	}
	if err := m.doc.Save(turns); err != nil {
		return fmt.Errorf("save chat history: %w", err)
	}
	return nil
}
