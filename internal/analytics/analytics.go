package analytics

import (
	"time"

	"sugarmate/internal/healthlog"
)

const uncategorized = "uncategorized"

// DailySummary aggregates health log entries for one calendar day.
type DailySummary struct {
	Date         string                 `json:"date"`
	TotalEntries int                    `json:"total_entries"`
	UniqueUsers  int                    `json:"unique_users"`
	ByCategory   map[string]int         `json:"by_category"`
	Users        map[string]UserSummary `json:"users"`
}

type UserSummary struct {
	User       string         `json:"user"`
	Entries    int            `json:"entries"`
	ByCategory map[string]int `json:"by_category"`
}

// SummarizeDay counts the entries whose timestamp falls on targetDate in
// targetDate's location.
func SummarizeDay(entries []healthlog.Entry, targetDate time.Time) *DailySummary {
	loc := targetDate.Location()
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	s := &DailySummary{
		Date:       startOfDay.Format("2006-01-02"),
		ByCategory: make(map[string]int),
		Users:      make(map[string]UserSummary),
	}

	for _, e := range entries {
		ts := e.Timestamp.In(loc)
		if ts.Before(startOfDay) || !ts.Before(endOfDay) {
			continue
		}

		cat := string(e.Category)
		if cat == "" {
			cat = uncategorized
		}

		s.TotalEntries++
		s.ByCategory[cat]++

		us, ok := s.Users[e.User]
		if !ok {
			us = UserSummary{User: e.User, ByCategory: make(map[string]int)}
		}
		us.Entries++
		us.ByCategory[cat]++
		s.Users[e.User] = us
	}

	s.UniqueUsers = len(s.Users)
	return s
}
