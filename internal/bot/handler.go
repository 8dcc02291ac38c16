package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sugarmate/internal/assist"
	"sugarmate/internal/healthlog"
	"sugarmate/internal/prefs"
)

// Notifier delivers a text to the group chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ConversationResponder answers messages no rule claimed.
type ConversationResponder interface {
	Reply(ctx context.Context, text string) (string, error)
}

// Message is an inbound chat message reduced to what the pipeline needs.
type Message struct {
	Text       string
	Name       string
	SenderType string
}

// Result describes what Handle did, mainly for logging and tests.
type Result struct {
	Ignored bool
	Action  Action
	Sent    []string
}

type Deps struct {
	BotName    string
	Classifier *Classifier
	Prefs      *prefs.Store
	Health     *healthlog.Store
	// Responder is nil when no language model is configured.
	Responder ConversationResponder
	Notifier  Notifier
	Logger    *zap.Logger
	Location  *time.Location
	Now       func() time.Time
}

// Handler runs one message through classification, the matching store
// mutation and outbound replies. Calls are serialized.
type Handler struct {
	botName    string
	classifier *Classifier
	prefs      *prefs.Store
	health     *healthlog.Store
	responder  ConversationResponder
	notifier   Notifier
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time

	mu sync.Mutex
	// last reminder occurrence (date and clock) each user was pinged for
	swept map[string]string
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		botName:    d.BotName,
		classifier: d.Classifier,
		prefs:      d.Prefs,
		health:     d.Health,
		responder:  d.Responder,
		notifier:   d.Notifier,
		logger:     d.Logger,
		loc:        d.Location,
		now:        d.Now,
		swept:      make(map[string]string),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.classifier == nil {
		h.classifier = NewClassifier(nil, h.logger)
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Handle never fails: store and delivery errors are logged and absorbed.
func (h *Handler) Handle(ctx context.Context, msg Message) Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.isSelf(msg) {
		return Result{Ignored: true}
	}

	now := h.now().In(h.loc)
	user := msg.Name
	p := h.prefs.Get(user)
	action := h.classifier.Classify(ctx, msg.Text, user, p, now)

	log := h.logger.With(zap.String("sender", user), zap.String("rule", action.Rule), zap.Stringer("action", action.Kind))
	log.Debug("message classified")

	res := Result{Action: action}
	switch action.Kind {
	case KindSilent:
		return res

	case KindSetOptStatus:
		if !action.OptIn && p.ExplicitlyOptedOut() {
			// already opted out: stay silent and leave the store alone
			res.Action = Action{Kind: KindSilent, Rule: action.Rule}
			return res
		}
		if err := h.prefs.SetOptedIn(user, action.OptIn); err != nil {
			log.Error("failed to persist opt status", zap.Error(err))
		}

	case KindLogHealth:
		if action.Entry != nil {
			if _, err := h.health.Append(user, *action.Entry); err != nil {
				log.Error("failed to persist health entry", zap.Error(err))
			}
		}

	case KindSetReminder:
		if action.Reminder != nil {
			if err := h.prefs.SetReminder(user, *action.Reminder); err != nil {
				log.Error("failed to persist reminder", zap.Error(err))
			}
		}

	case KindNone:
		res.Sent = append(res.Sent, h.fallback(ctx, log, msg)...)
		if ReminderDue(p.Reminder, now) {
			res.Sent = h.send(ctx, log, res.Sent, fmt.Sprintf(reminderPingReply, p.Reminder.Action))
		}
		return res
	}

	if action.Reply != "" {
		res.Sent = h.send(ctx, log, res.Sent, action.Reply)
	}
	return res
}

func (h *Handler) fallback(ctx context.Context, log *zap.Logger, msg Message) []string {
	if h.responder == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	reply, err := h.responder.Reply(ctx, strings.TrimSpace(msg.Text))
	if err != nil {
		var herr *assist.HistoryError
		if !errors.As(err, &herr) {
			log.Warn("conversational reply failed", zap.Error(err))
			return h.send(ctx, log, nil, apologyReply)
		}
		log.Error("failed to persist chat history", zap.Error(err))
	}
	return h.send(ctx, log, nil, reply)
}

// SweepReminders pings every opted-in user whose reminder time is the
// current minute. Each reminder fires at most once per day.
func (h *Handler) SweepReminders(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now().In(h.loc)
	sent := 0
	for _, user := range h.prefs.Users() {
		p := h.prefs.Get(user)
		if !p.IsOptedIn() || !SweepDue(p.Reminder, now) {
			continue
		}
		occurrence := now.Format("2006-01-02") + " " + now.Format("15:04") + " " + p.Reminder.Action
		if h.swept[user] == occurrence {
			continue
		}
		h.swept[user] = occurrence
		log := h.logger.With(zap.String("sender", user))
		if len(h.send(ctx, log, nil, fmt.Sprintf(reminderSweepReply, user, p.Reminder.Action))) > 0 {
			sent++
		}
	}
	return sent
}

func (h *Handler) isSelf(msg Message) bool {
	if strings.EqualFold(msg.SenderType, "bot") {
		return true
	}
	return h.botName != "" && msg.Name == h.botName
}

func (h *Handler) send(ctx context.Context, log *zap.Logger, sent []string, text string) []string {
	if err := h.notifier.Notify(ctx, text); err != nil {
		log.Error("failed to deliver message", zap.Error(err))
		return sent
	}
	return append(sent, text)
}
