package cmd

import (
	"fmt"
	"strings"

	"github.com/jimezsa/clockedin/internal/config"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/network"
	"github.com/jimezsa/clockedin/internal/seen"
)

// SeenOptions track which listings were already reported across runs.
type SeenOptions struct {
	Seen       string `help:"Path to seen jobs JSON file."`
	NewOnly    bool   `help:"Output only unseen jobs (requires --seen)."`
	SeenUpdate bool   `help:"Merge reported jobs into the --seen file (requires --seen)."`
}

func (o SeenOptions) validate() error {
	if strings.TrimSpace(o.Seen) != "" {
		return nil
	}
	if o.NewOnly {
		return fmt.Errorf("--new-only requires --seen")
	}
	if o.SeenUpdate {
		return fmt.Errorf("--seen-update requires --seen")
	}
	return nil
}

func (o SeenOptions) history() ([]models.Job, error) {
	if strings.TrimSpace(o.Seen) == "" {
		return nil, nil
	}
	return seen.ReadJobsAllowMissing(o.Seen)
}

// record merges jobs into the seen file when --seen-update is set.
func (o SeenOptions) record(ctx *Context, jobs []models.Job) error {
	if !o.SeenUpdate || len(jobs) == 0 {
		return nil
	}
	added, err := seen.Update(o.Seen, jobs)
	if err != nil {
		return err
	}
	ctx.Logger.Debug().Int("added", added).Str("path", o.Seen).Msg("seen history updated")
	return nil
}

func (c *Context) newFetcher(proxiesFlag string) (*linkedin.Fetcher, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}
	rotator, err := network.NewRotator(proxies, proxyBanDuration)
	if err != nil {
		return nil, err
	}
	client, err := network.NewClient(rotator, 0)
	if err != nil {
		return nil, err
	}
	return linkedin.NewFetcher(client, linkedin.FetcherOptions{
		RequestsPerMinute: c.Config.RequestsPerMinute,
		Logger:            c.Logger,
	}), nil
}
