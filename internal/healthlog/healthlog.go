// Package healthlog is the append-only record of sugar readings, meals and
// medication taken, persisted as one JSON array.
package healthlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sugarmate/internal/storage"
)

type Category string

const (
	CategorySugar      Category = "sugar"
	CategoryMeal       Category = "meal"
	CategoryMedication Category = "medication"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySugar, CategoryMeal, CategoryMedication:
		return true
	}
	return false
}

// Entry is immutable once appended. Keyword-triggered entries carry no
// category; Value is a string or a number.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Value     any       `json:"value"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

type Store struct {
	doc    storage.Document
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries []Entry
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(doc storage.Document, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{doc: doc, logger: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if err := s.Reload(); err != nil {
		logger.Warn("health log unreadable, starting empty", zap.Error(err))
	}
	return s
}

func (s *Store) Reload() error {
	var entries []Entry
	err := s.doc.Load(&entries)
	if err != nil {
		entries = nil
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return err
}

func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushLocked()
}

// Append stamps the entry with user, id and the current time, then rewrites
// the whole document. A failed write leaves the entry in memory.
func (s *Store) Append(user string, e Entry) (Entry, error) {
	e.User = user
	e.ID = uuid.NewString()
	e.Timestamp = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if err := s.flushLocked(); err != nil {
		return e, err
	}
	return e, nil
}

// Entries returns a copy in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) flushLocked() error {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	if err := s.doc.Save(entries); err != nil {
		return fmt.Errorf("save health log: %w", err)
	}
	return nil
}
