// Package prefs keeps per-sender settings: the opt-in flag and a single
// reminder. Senders are keyed by display name exactly as received, with no
// case folding.
package prefs

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"sugarmate/internal/storage"
)

type Reminder struct {
	Action string `json:"action"`
	Time   string `json:"time"`
}

type Preferences struct {
	OptedIn  *bool     `json:"opted_in,omitempty"`
	Reminder *Reminder `json:"reminder,omitempty"`
}

// IsOptedIn defaults to true until the user explicitly opts out.
func (p Preferences) IsOptedIn() bool {
	return p.OptedIn == nil || *p.OptedIn
}

// ExplicitlyOptedOut is true only when opted_in was stored as false.
func (p Preferences) ExplicitlyOptedOut() bool {
	return p.OptedIn != nil && !*p.OptedIn
}

type Store struct {
	doc    storage.Document
	logger *zap.Logger

	mu    sync.RWMutex
	users map[string]Preferences
}

func NewStore(doc storage.Document, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{doc: doc, logger: logger, users: make(map[string]Preferences)}
	if err := s.Reload(); err != nil {
		logger.Warn("preferences unreadable, starting empty", zap.Error(err))
	}
	return s
}

// Reload replaces the cache with the persisted document. On failure the
// cache is reset to empty and the error returned.
func (s *Store) Reload() error {
	users := make(map[string]Preferences)
	err := s.doc.Load(&users)
	if err != nil || users == nil {
		users = make(map[string]Preferences)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return err
}

// Flush rewrites the full document from the cache.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.doc.Save(s.users); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *Store) Get(user string) Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.users[user])
}

// SetOptedIn stores the flag. The cache keeps the new value even when the
// write fails; the error is returned so the caller can report it.
func (s *Store) SetOptedIn(user string, optedIn bool) error {
	return s.update(user, func(p *Preferences) {
		v := optedIn
		p.OptedIn = &v
	})
}

// SetReminder replaces any earlier reminder for the user.
func (s *Store) SetReminder(user string, r Reminder) error {
	return s.update(user, func(p *Preferences) {
		rr := r
		p.Reminder = &rr
	})
}

// Users returns every known sender in lexical order.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for u := range s.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (s *Store) update(user string, fn func(p *Preferences)) error {
	s.mu.Lock()
	p := clone(s.users[user])
	fn(&p)
	s.users[user] = p
	s.mu.Unlock()
	return s.Flush()
}

func clone(p Preferences) Preferences {
	out := Preferences{}
	if p.OptedIn != nil {
		v := *p.OptedIn
		out.OptedIn = &v
	}
	if p.Reminder != nil {
		r := *p.Reminder
		out.Reminder = &r
	}
	return out
}
