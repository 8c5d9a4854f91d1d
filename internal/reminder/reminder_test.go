package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	titles []string
}

func (r *recorder) notify(title, _ string) {
	r.titles = append(r.titles, title)
}

func setReminder(t *testing.T, store prefs.Store, enabled bool, frequency int) {
	t.Helper()
	_, err := prefs.UpdateReminder(context.Background(), store, func(r *models.ReminderSettings) {
		r.Enabled = enabled
		r.Frequency = frequency
	})
	require.NoError(t, err)
}

func TestReminderFiresPeriodically(t *testing.T) {
	store := prefs.NewMemoryStore(prefs.AreaLocal)
	sched := loop.NewManual(time.Unix(0, 0))
	rec := &recorder{}

	setReminder(t, store, true, 5)
	r := New(store, sched, rec.notify, zerolog.Nop())
	r.Start(context.Background())
	sched.Drain()
	assert.Equal(t, 5*time.Minute, r.Period())

	sched.Advance(4 * time.Minute)
	assert.Empty(t, rec.titles)
	sched.Advance(time.Minute)
	assert.Equal(t, []string{Title}, rec.titles)
	sched.Advance(10 * time.Minute)
	assert.Equal(t, 3, r.Fired())
}

func TestReminderFollowsSettingsChanges(t *testing.T) {
	store := prefs.NewMemoryStore(prefs.AreaLocal)
	sched := loop.NewManual(time.Unix(0, 0))
	rec := &recorder{}

	r := New(store, sched, rec.notify, zerolog.Nop())
	r.Start(context.Background())
	sched.Drain()
	assert.Zero(t, r.Period())

	setReminder(t, store, true, 1)
	sched.Drain()
	assert.Equal(t, time.Minute, r.Period())

	setReminder(t, store, true, 3)
	sched.Drain()
	sched.Advance(2 * time.Minute)
	assert.Zero(t, r.Fired(), "the old alarm is replaced")
	sched.Advance(time.Minute)
	assert.Equal(t, 1, r.Fired())
	assert.Equal(t, 1, sched.PendingTimers())

	setReminder(t, store, false, 3)
	sched.Drain()
	assert.Zero(t, r.Period())
	assert.Zero(t, sched.PendingTimers())

	setReminder(t, store, true, 0)
	sched.Drain()
	assert.Zero(t, r.Period())
	sched.Advance(time.Hour)
	assert.Equal(t, 1, r.Fired())
}

func TestReminderIgnoresOtherAreas(t *testing.T) {
	store := prefs.NewMemoryStore(prefs.AreaSync)
	sched := loop.NewManual(time.Unix(0, 0))
	rec := &recorder{}

	r := New(store, sched, rec.notify, zerolog.Nop())
	r.Start(context.Background())
	sched.Drain()

	setReminder(t, store, true, 1)
	sched.Drain()
	assert.Zero(t, r.Period())
}

func TestReminderStop(t *testing.T) {
	store := prefs.NewMemoryStore(prefs.AreaLocal)
	sched := loop.NewManual(time.Unix(0, 0))
	rec := &recorder{}

	setReminder(t, store, true, 1)
	r := New(store, sched, rec.notify, zerolog.Nop())
	stop := r.Start(context.Background())
	sched.Drain()
	require.Equal(t, 1, sched.PendingTimers())

	stop()
	sched.Drain()
	assert.Zero(t, sched.PendingTimers())

	setReminder(t, store, true, 2)
	sched.Drain()
	sched.Advance(time.Hour)
	assert.Empty(t, rec.titles)
}
