package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jimezsa/clockedin/internal/config"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/jimezsa/clockedin/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

// OpenStore opens the configured preference store. The returned func
// releases it.
func (c *Context) OpenStore() (prefs.Store, func(), error) {
	store, err := prefs.Open(prefs.Options{
		Backend:      c.Config.Store,
		Path:         c.Config.ResolveStorePath(c.ConfigDir),
		Area:         prefs.ParseArea(c.Config.Area),
		PollInterval: time.Second,
		Logger:       c.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open preferences: %w", err)
	}
	release := func() {}
	if closer, ok := store.(io.Closer); ok {
		release = func() {
			if err := closer.Close(); err != nil {
				c.Logger.Warn().Err(err).Msg("close preferences")
			}
		}
	}
	return store, release, nil
}
