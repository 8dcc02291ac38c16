package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sugarmate/internal/healthlog"
	"sugarmate/internal/prefs"
)

type Kind int

const (
	// KindNone means no rule matched; the handler falls through to the
	// conversational responder and the reminder check.
	KindNone Kind = iota
	KindSilent
	KindSetOptStatus
	KindLogHealth
	KindSetReminder
	KindReply
	KindEmergency
	KindShareResource
	KindApology
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSilent:
		return "silent"
	case KindSetOptStatus:
		return "set_opt_status"
	case KindLogHealth:
		return "log_health"
	case KindSetReminder:
		return "set_reminder"
	case KindReply:
		return "reply"
	case KindEmergency:
		return "emergency"
	case KindShareResource:
		return "share_resource"
	case KindApology:
		return "apology"
	}
	return "unknown"
}

// Action is the outcome of classification: at most one store mutation
// (OptIn, Entry or Reminder depending on Kind) and at most one reply.
type Action struct {
	Kind     Kind
	Rule     string
	Reply    string
	OptIn    bool
	Entry    *healthlog.Entry
	Reminder *prefs.Reminder
}

// Input is one message as seen by the rules. Text keeps the sender's casing;
// Normalized is trimmed and lower-cased.
type Input struct {
	Text       string
	Normalized string
	Sender     string
	Prefs      prefs.Preferences
	Now        time.Time
}

// HealthExtractor turns free text into a structured entry, or nil.
type HealthExtractor interface {
	Extract(ctx context.Context, text string) (*healthlog.Entry, error)
}

type rule struct {
	name  string
	match func(ctx context.Context, in Input) (Action, bool)
}

// Rule names in evaluation order.
const (
	RuleOptOut          = "opt_out"
	RuleOptIn           = "opt_in"
	RuleOptedOut        = "opted_out"
	RuleExtract         = "extract_health_data"
	RuleSetReminder     = "set_reminder"
	RuleDemoPhrase      = "demo_phrase"
	RuleLogMeal         = "log_meal"
	RuleForgotInsulin   = "forgot_insulin"
	RuleLowSugar        = "low_sugar"
	RuleSugarReading    = "sugar_reading"
	RuleInsulinReminder = "insulin_reminder"
	RuleShowLog         = "show_log"
	RuleHelpMenu        = "help_menu"
	RuleEmergency       = "emergency"
	RuleResource        = "resource"
)

// SugarHighThreshold is the reading above which a value is reported as high.
const SugarHighThreshold = 140

const clockLayout = "03:04PM"

var (
	reminderRe = regexp.MustCompile(`(?i)remind me to (.+?) at ([0-9][0-9: ]*(?:am|pm)?)`)
	mealRe     = regexp.MustCompile(`log (breakfast|lunch|dinner)`)
	sugarRe    = regexp.MustCompile(`my sugar is (\d+)`)
)

// Classifier evaluates an ordered rule list; the first match wins.
//
// The "help" command (help_menu) is deliberately an exact-match rule placed
// before the emergency keywords, so a bare "help" shows the menu while any
// longer message containing "help" raises the emergency reply.
type Classifier struct {
	rules  []rule
	logger *zap.Logger
}

// NewClassifier builds the rule list. A nil extractor leaves out the
// language-model extraction step.
func NewClassifier(extractor HealthExtractor, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Classifier{logger: logger}

	c.rules = append(c.rules,
		rule{RuleOptOut, matchOptOut},
		rule{RuleOptIn, matchOptIn},
		rule{RuleOptedOut, matchOptedOut},
	)
	if extractor != nil {
		c.rules = append(c.rules, rule{RuleExtract, c.extractRule(extractor)})
	}
	c.rules = append(c.rules,
		rule{RuleSetReminder, matchSetReminder},
		rule{RuleDemoPhrase, matchDemoPhrase},
		rule{RuleLogMeal, matchLogMeal},
		rule{RuleForgotInsulin, matchContains(forgotInsulinReply, "forgot insulin")},
		rule{RuleLowSugar, matchContains(lowSugarReply, "my sugar is low", "low sugar")},
		rule{RuleSugarReading, matchSugarReading},
		rule{RuleInsulinReminder, matchInsulinReminder},
		rule{RuleShowLog, matchContains(showLogReply, "show my log")},
		rule{RuleHelpMenu, matchHelpMenu},
		rule{RuleEmergency, matchEmergency},
		rule{RuleResource, matchResource},
	)
	return c
}

// RuleNames reports the evaluation order.
func (c *Classifier) RuleNames() []string {
	out := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.name)
	}
	return out
}

func (c *Classifier) Classify(ctx context.Context, text, sender string, p prefs.Preferences, now time.Time) Action {
	in := Input{
		Text:       strings.TrimSpace(text),
		Normalized: strings.ToLower(strings.TrimSpace(text)),
		Sender:     sender,
		Prefs:      p,
		Now:        now,
	}
	for _, r := range c.rules {
		if a, ok := r.match(ctx, in); ok {
			a.Rule = r.name
			return a
		}
	}
	return Action{Kind: KindNone}
}

func matchOptOut(_ context.Context, in Input) (Action, bool) {
	if !strings.HasPrefix(in.Normalized, "opt out") {
		return Action{}, false
	}
	return Action{Kind: KindSetOptStatus, OptIn: false, Reply: optOutReply}, true
}

func matchOptIn(_ context.Context, in Input) (Action, bool) {
	if !strings.HasPrefix(in.Normalized, "opt in") {
		return Action{}, false
	}
	return Action{Kind: KindSetOptStatus, OptIn: true, Reply: optInReply}, true
}

func matchOptedOut(_ context.Context, in Input) (Action, bool) {
	if !in.Prefs.ExplicitlyOptedOut() {
		return Action{}, false
	}
	return Action{Kind: KindSilent}, true
}

func (c *Classifier) extractRule(x HealthExtractor) func(context.Context, Input) (Action, bool) {
	return func(ctx context.Context, in Input) (Action, bool) {
		if in.Text == "" {
			return Action{}, false
		}
		entry, err := x.Extract(ctx, in.Text)
		if err != nil {
			c.logger.Warn("health data extraction failed", zap.String("sender", in.Sender), zap.Error(err))
			return Action{Kind: KindApology, Reply: apologyReply}, true
		}
		if entry == nil {
			return Action{}, false
		}
		return Action{
			Kind:  KindLogHealth,
			Entry: entry,
			Reply: fmt.Sprintf(healthLoggedReply, entry.Category, entry.Value),
		}, true
	}
}

func matchSetReminder(_ context.Context, in Input) (Action, bool) {
	m := reminderRe.FindStringSubmatch(in.Text)
	if m == nil {
		return Action{}, false
	}
	what := strings.TrimSpace(m[1])
	at := strings.TrimSpace(m[2])
	return Action{
		Kind:     KindSetReminder,
		Reminder: &prefs.Reminder{Action: what, Time: at},
		Reply:    fmt.Sprintf(reminderSetReply, what, at),
	}, true
}

func matchDemoPhrase(_ context.Context, in Input) (Action, bool) {
	for _, d := range demoPhrases {
		if strings.Contains(in.Normalized, d.phrase) {
			return Action{Kind: KindReply, Reply: d.reply}, true
		}
	}
	return Action{}, false
}

func matchLogMeal(_ context.Context, in Input) (Action, bool) {
	m := mealRe.FindStringSubmatch(in.Normalized)
	if m == nil {
		return Action{}, false
	}
	meal := m[1]
	return Action{
		Kind:  KindLogHealth,
		Entry: &healthlog.Entry{Value: meal},
		Reply: fmt.Sprintf(mealLoggedReply, strings.ToUpper(meal[:1])+meal[1:]),
	}, true
}

func matchContains(reply string, phrases ...string) func(context.Context, Input) (Action, bool) {
	return func(_ context.Context, in Input) (Action, bool) {
		for _, p := range phrases {
			if strings.Contains(in.Normalized, p) {
				return Action{Kind: KindReply, Reply: reply}, true
			}
		}
		return Action{}, false
	}
}

func matchSugarReading(_ context.Context, in Input) (Action, bool) {
	m := sugarRe.FindStringSubmatch(in.Normalized)
	if m == nil {
		return Action{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// more digits than an int holds; logged as typed
		return Action{
			Kind:  KindLogHealth,
			Entry: &healthlog.Entry{Value: m[1]},
			Reply: fmt.Sprintf(sugarOffScaleReply, m[1]),
		}, true
	}
	reply := fmt.Sprintf(sugarGoodReply, n)
	if n > SugarHighThreshold {
		reply = fmt.Sprintf(sugarHighReply, n)
	}
	return Action{Kind: KindLogHealth, Entry: &healthlog.Entry{Value: n}, Reply: reply}, true
}

func matchInsulinReminder(_ context.Context, in Input) (Action, bool) {
	if !strings.Contains(in.Normalized, "remind me to take insulin") {
		return Action{}, false
	}
	at := in.Now.Add(30 * time.Minute).Format(clockLayout)
	return Action{
		Kind:     KindSetReminder,
		Reminder: &prefs.Reminder{Action: "take insulin", Time: at},
		Reply:    fmt.Sprintf(insulinRemindReply, at),
	}, true
}

func matchHelpMenu(_ context.Context, in Input) (Action, bool) {
	if in.Normalized != "help" {
		return Action{}, false
	}
	return Action{Kind: KindReply, Reply: helpReply}, true
}

func matchEmergency(_ context.Context, in Input) (Action, bool) {
	for _, k := range emergencyKeywords {
		if strings.Contains(in.Normalized, k) {
			return Action{Kind: KindEmergency, Reply: emergencyReply}, true
		}
	}
	return Action{}, false
}

// matchResource rotates through tips by the second of the minute.
func matchResource(_ context.Context, in Input) (Action, bool) {
	if !strings.Contains(in.Normalized, "resource") && !strings.Contains(in.Normalized, "tip") {
		return Action{}, false
	}
	return Action{Kind: KindShareResource, Reply: tips[in.Now.Second()%len(tips)]}, true
}

// ReminderDue compares the stored reminder time with the clock formatted as
// hh:mmAM/PM. Both sides drop whitespace and case; the stored time only has
// to be contained in the clock string, so "8:00pm" matches "08:00pm".
func ReminderDue(r *prefs.Reminder, now time.Time) bool {
	if r == nil {
		return false
	}
	want := strings.ToLower(strings.Join(strings.Fields(r.Time), ""))
	if want == "" {
		return false
	}
	clock := strings.ToLower(now.Format(clockLayout))
	return strings.Contains(clock, want)
}

var sweepLayouts = []string{"3:04PM", "3PM", "15:04"}

// SweepDue is the stricter check used by the background sweep: the stored
// time must parse as a full clock time ("8:00pm", "8pm", "20:00") equal to
// the current hour and minute. Fragments like "8" never fire here.
func SweepDue(r *prefs.Reminder, now time.Time) bool {
	at, ok := reminderClock(r)
	return ok && at == now.Format("15:04")
}

// reminderClock normalizes a stored reminder time to 24-hour "15:04".
func reminderClock(r *prefs.Reminder) (string, bool) {
	if r == nil {
		return "", false
	}
	v := strings.ToUpper(strings.Join(strings.Fields(r.Time), ""))
	for _, layout := range sweepLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
