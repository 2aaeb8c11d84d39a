package notes

import (
	"fmt"
	"strings"
	"time"
)

// ReminderInputLayouts are the accepted layouts of ReminderISO, parsed in local time.
var ReminderInputLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// MinuteKey renders t as "M/D H:MM": month, day and hour unpadded, minutes zero-padded, 24-hour.
// Reminders and the scheduler agree on a minute by comparing these strings.
func MinuteKey(t time.Time) string {
	return fmt.Sprintf("%d/%d %d:%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// ParseReminder parses a reminder input string in local time.
func ParseReminder(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}

	for _, layout := range ReminderInputLayouts {
		if t, err := time.ParseInLocation(layout, iso, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatReminder derives the display reminder from its input string. Empty or unparsable input
// means no reminder.
func FormatReminder(iso string) string {
	t, ok := ParseReminder(iso)
	if !ok {
		return ""
	}

	return MinuteKey(t)
}
