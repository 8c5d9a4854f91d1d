// Package reminder raises a periodic "go check for jobs" notification
// driven by the stored reminder settings.
package reminder

import (
	"context"
	"time"

	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/rs/zerolog"
)

const (
	Title   = "Time to check for jobs!"
	Message = "Don't forget to run your Clocked In search."

	readTimeout = 5 * time.Second
)

// Notifier shows one notification.
type Notifier func(title, message string)

// Reminder keeps a single periodic alarm in line with the settings key.
// Its state lives on the scheduler.
type Reminder struct {
	store  prefs.Store
	sched  loop.Scheduler
	notify Notifier
	logger zerolog.Logger

	ctx    context.Context
	period time.Duration
	stop   func() bool
	gen    int
	fired  int
}

func New(store prefs.Store, sched loop.Scheduler, notify Notifier, logger zerolog.Logger) *Reminder {
	return &Reminder{
		store:  store,
		sched:  sched,
		notify: notify,
		logger: logger.With().Str("component", "reminder").Logger(),
		ctx:    context.Background(),
	}
}

// Start syncs the alarm now and again whenever the local settings change.
// The returned func unsubscribes and clears the alarm.
func (r *Reminder) Start(ctx context.Context) func() {
	r.ctx = ctx
	unsubscribe := r.store.Subscribe(func(change prefs.Change) {
		if change.Key != prefs.KeySettings || change.Area != prefs.AreaLocal {
			return
		}
		r.sched.Post(r.Sync)
	})
	r.sched.Post(r.Sync)
	return func() {
		unsubscribe()
		r.sched.Post(r.clear)
	}
}

// Sync reads the settings and re-arms or clears the alarm. Runs on the
// scheduler.
func (r *Reminder) Sync() {
	ctx, cancel := context.WithTimeout(r.ctx, readTimeout)
	defer cancel()

	settings, err := prefs.LoadSettings(ctx, r.store)
	if err != nil {
		r.logger.Warn().Err(err).Msg("read reminder settings")
		return
	}
	r.apply(settings.Reminder)
}

// Period is the armed interval, zero when no alarm is set.
func (r *Reminder) Period() time.Duration {
	return r.period
}

// Fired counts delivered notifications.
func (r *Reminder) Fired() int {
	return r.fired
}

func (r *Reminder) apply(settings models.ReminderSettings) {
	r.clear()
	if !settings.Active() {
		r.logger.Info().Bool("enabled", settings.Enabled).Int("frequency", settings.Frequency).Msg("reminder cleared")
		return
	}
	r.period = time.Duration(settings.Frequency) * time.Minute
	r.arm(r.gen)
	r.logger.Info().Int("frequency", settings.Frequency).Msg("reminder set")
}

func (r *Reminder) arm(gen int) {
	r.stop = r.sched.AfterFunc(r.period, func() {
		if gen != r.gen {
			return
		}
		r.fired++
		r.notify(Title, Message)
		r.arm(gen)
	})
}

func (r *Reminder) clear() {
	r.gen++
	r.period = 0
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}
