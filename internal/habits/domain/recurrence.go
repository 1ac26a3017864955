package domain

// RecurrenceDefined reports whether AppliesToDate has a rule for the period.
// Monthly recurrence has no agreed rule yet and is never due.
func RecurrenceDefined(period RepeatPeriod) bool {
	switch period {
	case RepeatNone, RepeatDaily, RepeatWeekly:
		return true
	default:
		return false
	}
}

// AppliesToDate reports whether the habit is due on date.
func AppliesToDate(h *Habit, date Date) bool {
	created := h.CreatedOn()
	if date.Before(created) {
		return false
	}

	interval := h.RepeatInterval()
	if interval <= 0 {
		interval = 1
	}
	days := date.DaysSince(created)

	switch h.RepeatPeriod() {
	case RepeatNone:
		return true
	case RepeatDaily:
		return days%interval == 0
	case RepeatWeekly:
		return (days/7)%interval == 0 && date.Weekday() == created.Weekday()
	default:
		// TODO: define monthly recurrence (same day-of-month vs. last day clamping) and cover it here.
		return false
	}
}

// DueOn filters habits to the active ones that apply to date.
func DueOn(habits []*Habit, date Date) []*Habit {
	due := make([]*Habit, 0, len(habits))
	for _, h := range habits {
		if h.IsActive() && AppliesToDate(h, date) {
			due = append(due, h)
		}
	}
	return due
}
