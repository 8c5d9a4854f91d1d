package models

// ReminderSettings controls the periodic "check for jobs" notification.
type ReminderSettings struct {
	Enabled   bool `json:"enabled"`
	Frequency int  `json:"frequency"`
}

// Settings is the value stored under the settings key.
type Settings struct {
	Reminder ReminderSettings `json:"reminderSettings"`
}

// Active reports whether a reminder should be armed.
func (r ReminderSettings) Active() bool {
	return r.Enabled && r.Frequency > 0
}
