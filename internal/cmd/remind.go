package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/jimezsa/clockedin/internal/reminder"
	"golang.org/x/sync/errgroup"
)

type RemindCmd struct {
	Set    RemindSetCmd    `cmd:"" help:"Enable reminders every N minutes."`
	Off    RemindOffCmd    `cmd:"" help:"Disable reminders."`
	Status RemindStatusCmd `cmd:"" help:"Show reminder settings."`
	Run    RemindRunCmd    `cmd:"" help:"Stay in the foreground and notify on schedule."`
}

type RemindSetCmd struct {
	Frequency int `arg:"" help:"Minutes between reminders."`
}

type RemindOffCmd struct{}

type RemindStatusCmd struct{}

type RemindRunCmd struct{}

func (r *RemindSetCmd) Run(ctx *Context) error {
	if r.Frequency <= 0 {
		return fmt.Errorf("frequency must be a positive number of minutes")
	}
	return updateReminder(ctx, func(settings *models.ReminderSettings) {
		settings.Enabled = true
		settings.Frequency = r.Frequency
	})
}

func (r *RemindOffCmd) Run(ctx *Context) error {
	return updateReminder(ctx, func(settings *models.ReminderSettings) {
		settings.Enabled = false
	})
}

func (r *RemindStatusCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	settings, err := prefs.LoadSettings(context.Background(), store)
	if err != nil {
		return err
	}
	return printReminder(ctx, settings.Reminder)
}

func (r *RemindRunCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lp := loop.New(ctx.Logger)
	rem := reminder.New(store, lp, ctx.UI.Notify, ctx.Logger)

	g, gctx := errgroup.WithContext(sigCtx)
	unsubscribe := rem.Start(gctx)
	defer unsubscribe()

	g.Go(func() error { return lp.Run(gctx) })
	if watcher, ok := store.(prefs.Watcher); ok {
		g.Go(func() error { return watcher.Watch(gctx) })
	}
	return g.Wait()
}

func updateReminder(ctx *Context, update func(*models.ReminderSettings)) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	settings, err := prefs.UpdateReminder(context.Background(), store, update)
	if err != nil {
		return err
	}
	return printReminder(ctx, settings)
}

func printReminder(ctx *Context, settings models.ReminderSettings) error {
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, settings)
	}
	if settings.Active() {
		ctx.UI.Infof("Reminders every %d minutes", settings.Frequency)
		return nil
	}
	ctx.UI.Mutedf("Reminders are off")
	return nil
}
