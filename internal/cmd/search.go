package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/clockedin/internal/export"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
)

type SearchCmd struct {
	URL    SearchURLCmd    `cmd:"" name:"url" help:"Print the LinkedIn search URL for the given fields."`
	Save   SearchSaveCmd   `cmd:"" help:"Save a LinkedIn search or a manual search URL."`
	List   SearchListCmd   `cmd:"" help:"List saved searches."`
	Rm     SearchRmCmd     `cmd:"" help:"Delete a saved search."`
	Clear  SearchClearCmd  `cmd:"" help:"Delete every saved search."`
	Export SearchExportCmd `cmd:"" help:"Export saved searches as CSV."`
}

// SearchFields are the fields of the LinkedIn search form.
type SearchFields struct {
	Keywords string `arg:"" optional:"" help:"Job title or keywords."`
	Radius   int    `help:"Search radius in miles." default:"25"`
	Time     string `help:"Posted within: r1800, r3600, r7200, r86400." enum:"r1800,r3600,r7200,r86400" default:"r1800"`
	Sort     string `help:"Sort order: DD (most recent) or R (most relevant)." enum:"DD,R" default:"DD"`
}

func (f SearchFields) params() models.SearchParams {
	return models.SearchParams{
		Keywords:     strings.TrimSpace(f.Keywords),
		SearchRadius: f.Radius,
		Time:         f.Time,
		SortBy:       f.Sort,
	}
}

type SearchURLCmd struct {
	SearchFields
}

type SearchSaveCmd struct {
	SearchFields
	URL string `name:"url" help:"Save this URL as a manual search instead of building one."`
}

type SearchListCmd struct {
	Links string `help:"Table link display: short or full." enum:"short,full" default:"full"`
}

type SearchRmCmd struct {
	ID string `arg:"" help:"Saved search ID."`
}

type SearchClearCmd struct{}

type SearchExportCmd struct {
	Output string `name:"output" short:"o" help:"Destination file, or - for stdout."`
}

func (s *SearchURLCmd) Run(ctx *Context) error {
	params := s.params()
	if err := linkedin.ValidateSearch(params); err != nil {
		return err
	}
	_, err := fmt.Fprintln(ctx.Out, ctx.UI.LinkText(linkedin.BuildSearchURL(params, ctx.Config.GeoID)))
	return err
}

func (s *SearchSaveCmd) Run(ctx *Context) error {
	search, err := s.build(ctx.Config.GeoID)
	if err != nil {
		return err
	}

	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	saved, err := prefs.AddSearch(context.Background(), store, search)
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, saved)
	}
	ctx.UI.Successf("Saved %s", saved.ID)
	_, err = fmt.Fprintln(ctx.Out, ctx.UI.LinkText(saved.URL))
	return err
}

func (s *SearchSaveCmd) build(geoID string) (models.SavedSearch, error) {
	manual := strings.TrimSpace(s.URL)
	if manual != "" {
		label, err := models.BaseDomainLabel(manual)
		if err != nil {
			return models.SavedSearch{}, err
		}
		return models.SavedSearch{
			Kind:     models.KindManual,
			Keywords: strings.TrimSpace(s.Keywords),
			URL:      manual,
			Manual:   &models.ManualSearch{Label: label},
		}, nil
	}

	params := s.params()
	if err := linkedin.ValidateSearch(params); err != nil {
		return models.SavedSearch{}, err
	}
	return models.SavedSearch{
		Kind:     models.KindLinkedIn,
		Keywords: params.Keywords,
		URL:      linkedin.BuildSearchURL(params, geoID),
		LinkedIn: &models.LinkedInSearch{
			SearchRadius: params.SearchRadius,
			Time:         params.Time,
			SortBy:       params.SortBy,
		},
	}, nil
}

func (s *SearchListCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	searches, err := prefs.LoadSearches(context.Background(), store)
	if err != nil {
		return err
	}
	format := export.FormatTable
	switch {
	case ctx.JSONOutput:
		format = export.FormatJSON
	case ctx.PlainText:
		format = export.FormatCSV
	}
	return export.WriteSearches(ctx.Out, searches, format, writeOptions(ctx, ctx.Out, OutputOptions{Links: s.Links}))
}

func (s *SearchRmCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	found, err := prefs.RemoveSearch(context.Background(), store, s.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no saved search with id %q", s.ID)
	}
	ctx.UI.Successf("Deleted %s", s.ID)
	return nil
}

func (s *SearchClearCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	if err := prefs.SaveSearches(context.Background(), store, nil); err != nil {
		return err
	}
	ctx.UI.Successf("Cleared saved searches")
	return nil
}

func (s *SearchExportCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	searches, err := prefs.LoadSearches(context.Background(), store)
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		ctx.UI.Warnf("No saved searches to export")
		return nil
	}

	path := strings.TrimSpace(s.Output)
	if path == "" {
		path = export.SearchesFileName
	}
	var w io.Writer = ctx.Out
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if err := export.WriteSearchesCSV(w, searches); err != nil {
		return err
	}
	if path != "-" {
		ctx.UI.Successf("Exported %d searches to %s", len(searches), path)
	}
	return nil
}
