package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidDateRange is returned when a range starts after it ends.
var ErrInvalidDateRange = errors.New("start date is after end date")

// daySet collects the distinct days on which at least one habit's effective
// status is Completed.
func daySet(entries []LogEntry) map[Date]struct{} {
	days := make(map[Date]struct{})
	for key, e := range EffectiveStatuses(entries) {
		if e.Action == ActionCompleted {
			days[key.Date] = struct{}{}
		}
	}
	return days
}

// CompletedDays returns the distinct completed days in ascending order.
func CompletedDays(entries []LogEntry) []Date {
	set := daySet(entries)
	days := make([]Date, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	slices.SortFunc(days, Date.Compare)
	return days
}

// TotalCompletions counts (habit, day) pairs whose effective status is Completed.
func TotalCompletions(entries []LogEntry) int {
	total := 0
	for _, e := range EffectiveStatuses(entries) {
		if e.Action == ActionCompleted {
			total++
		}
	}
	return total
}

// DailyStatuses resolves the last-written entry of each day, across all habits
// in entries.
func DailyStatuses(entries []LogEntry) map[Date]LogEntry {
	daily := make(map[Date]LogEntry, len(entries))
	for _, e := range entries {
		current, ok := daily[e.Date]
		if !ok || compareRecorded(e, current) > 0 {
			daily[e.Date] = e
		}
	}
	return daily
}

// CompletionRate is the percentage of logged days in [start, end] whose
// effective status is Completed. Days without entries are not counted.
func CompletionRate(entries []LogEntry, start, end Date) (float64, error) {
	if start.After(end) {
		return 0, ErrInvalidDateRange
	}
	daily := DailyStatuses(FilterRange(entries, start, end))
	if len(daily) == 0 {
		return 0, nil
	}
	completed := 0
	for _, e := range daily {
		if e.Action == ActionCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(daily)) * 100, nil
}

// CurrentStreak counts consecutive completed days ending at today. It is zero
// when today is not completed.
func CurrentStreak(entries []LogEntry, today Date) int {
	days := daySet(entries)
	streak := 0
	for day := today; ; day = day.AddDays(-1) {
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
	}
}

// LongestStreak returns the longest run of consecutive completed days.
func LongestStreak(entries []LogEntry) int {
	days := CompletedDays(entries)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].DaysSince(days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// LastCompletedDay returns the most recent completed day.
func LastCompletedDay(entries []LogEntry) (Date, bool) {
	days := CompletedDays(entries)
	if len(days) == 0 {
		return Date{}, false
	}
	return days[len(days)-1], true
}

// HabitStats is the per-habit statistics panel.
type HabitStats struct {
	HabitID                 uuid.UUID `json:"habit_id" yaml:"habit_id"`
	TotalCompletions        int       `json:"total_completions" yaml:"total_completions"`
	CurrentStreak           int       `json:"current_streak" yaml:"current_streak"`
	LongestStreak           int       `json:"longest_streak" yaml:"longest_streak"`
	Last7DaysRate           float64   `json:"last_7_days_rate" yaml:"last_7_days_rate"`
	TotalTrackedDays        int       `json:"total_tracked_days" yaml:"total_tracked_days"`
	DaysSinceLastCompletion int       `json:"days_since_last_completion" yaml:"days_since_last_completion"`
}

// ComputeHabitStats derives HabitStats from one habit's log.
func ComputeHabitStats(h *Habit, entries []LogEntry, today Date) HabitStats {
	entries = FilterHabit(entries, h.ID())

	stats := HabitStats{
		HabitID:                 h.ID(),
		TotalCompletions:        TotalCompletions(entries),
		CurrentStreak:           CurrentStreak(entries, today),
		LongestStreak:           LongestStreak(entries),
		DaysSinceLastCompletion: -1,
	}
	stats.Last7DaysRate, _ = CompletionRate(entries, today.AddDays(-6), today)

	startedOn := h.CreatedOn()
	for _, e := range entries {
		if e.Action == ActionCreated {
			startedOn = e.Date
			break
		}
	}
	stats.TotalTrackedDays = max(0, today.DaysSince(startedOn))

	if last, ok := LastCompletedDay(entries); ok {
		stats.DaysSinceLastCompletion = today.DaysSince(last)
	}
	return stats
}

// TodaySummary describes the caller's progress for the current day.
type TodaySummary struct {
	Date                 Date       `json:"date" yaml:"date"`
	TotalHabitsToday     int        `json:"total_habits_today" yaml:"total_habits_today"`
	CompletedHabitsToday int        `json:"completed_habits_today" yaml:"completed_habits_today"`
	CompletionRateToday  float64    `json:"completion_rate_today" yaml:"completion_rate_today"`
	CurrentStreak        int        `json:"current_streak" yaml:"current_streak"`
	FirstCompletionAt    *time.Time `json:"first_completion_at,omitempty" yaml:"first_completion_at,omitempty"`
}

// ComputeTodaySummary combines the owner's habits with their full log.
func ComputeTodaySummary(habits []*Habit, entries []LogEntry, today Date) TodaySummary {
	summary := TodaySummary{
		Date:          today,
		CurrentStreak: CurrentStreak(entries, today),
	}

	todays := FilterRange(entries, today, today)
	for _, h := range DueOn(habits, today) {
		summary.TotalHabitsToday++
		if e, ok := EffectiveStatusOn(todays, h.ID(), today); ok && e.Action == ActionCompleted {
			summary.CompletedHabitsToday++
		}
	}
	if summary.TotalHabitsToday > 0 {
		summary.CompletionRateToday = float64(summary.CompletedHabitsToday) / float64(summary.TotalHabitsToday) * 100
	}

	effective := EffectiveStatuses(todays)
	for _, e := range todays {
		if e.Action != ActionCompleted {
			continue
		}
		if latest := effective[DayKey{HabitID: e.HabitID, Date: today}]; latest.Action != ActionCompleted {
			continue
		}
		if summary.FirstCompletionAt == nil || e.CreatedAt.Before(*summary.FirstCompletionAt) {
			at := e.CreatedAt
			summary.FirstCompletionAt = &at
		}
	}
	return summary
}

// UserSummary aggregates an owner's activity over a date range.
type UserSummary struct {
	Start            Date               `json:"start" yaml:"start"`
	End              Date               `json:"end" yaml:"end"`
	TotalCompletions int                `json:"total_completions" yaml:"total_completions"`
	LongestStreak    int                `json:"longest_streak" yaml:"longest_streak"`
	WeeklyAverage    float64            `json:"weekly_average" yaml:"weekly_average"`
	CompletionRate   float64            `json:"completion_rate" yaml:"completion_rate"`
	ActionCounts     map[ActionType]int `json:"action_counts" yaml:"action_counts"`
}

// ComputeUserSummary summarizes entries that fall in [start, end].
func ComputeUserSummary(entries []LogEntry, start, end Date) (UserSummary, error) {
	if start.After(end) {
		return UserSummary{}, ErrInvalidDateRange
	}
	inRange := FilterRange(entries, start, end)

	summary := UserSummary{
		Start:            start,
		End:              end,
		TotalCompletions: TotalCompletions(inRange),
		LongestStreak:    LongestStreak(inRange),
		ActionCounts:     make(map[ActionType]int),
	}
	summary.CompletionRate, _ = CompletionRate(inRange, start, end)

	days := end.DaysSince(start) + 1
	weeks := max(1, (days+6)/7)
	summary.WeeklyAverage = float64(summary.TotalCompletions) / float64(weeks)

	for _, e := range inRange {
		summary.ActionCounts[e.Action]++
	}
	return summary, nil
}
