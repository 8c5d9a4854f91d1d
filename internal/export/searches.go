package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/clockedin/internal/models"
	"github.com/muesli/termenv"
)

// SearchesFileName is the name exported search lists are saved under.
const SearchesFileName = "Job_Search_Data.csv"

var searchColumns = []string{
	"id",
	"kind",
	"keywords",
	"url",
	"created_at",
	"searchRadius",
	"time",
	"sortBy",
	"label",
}

// WriteSearchesCSV writes saved searches as CSV: a bare header line, then
// one line per search with every cell quoted and inner quotes doubled.
// An empty list writes nothing.
func WriteSearchesCSV(w io.Writer, searches []models.SavedSearch) error {
	if len(searches) == 0 {
		return nil
	}
	lines := make([]string, 0, len(searches)+1)
	lines = append(lines, strings.Join(searchColumns, ","))
	for _, search := range searches {
		cells := searchRow(search)
		for i, cell := range cells {
			cells[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// WriteSearches renders saved searches for the terminal, or as JSON/CSV.
func WriteSearches(w io.Writer, searches []models.SavedSearch, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		if searches == nil {
			searches = []models.SavedSearch{}
		}
		return writeJSON(w, searches)
	case FormatCSV:
		return WriteSearchesCSV(w, searches)
	}

	if len(searches) == 0 {
		_, err := fmt.Fprintln(w, "No saved searches")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"id", "search", "details", "url"}, "\t"))
	output := termenv.NewOutput(w)
	for _, search := range searches {
		title := search.Keywords
		if search.Kind == models.KindManual && search.Manual != nil {
			title = search.Manual.Label
		}
		fmt.Fprintln(tw, strings.Join([]string{
			search.ID,
			safe(title),
			search.Describe(),
			linkCell(search.URL, output, opts),
		}, "\t"))
	}
	return tw.Flush()
}

func searchRow(search models.SavedSearch) []string {
	created := ""
	if !search.CreatedAt.IsZero() {
		created = search.CreatedAt.UTC().Format(time.RFC3339)
	}
	row := []string{
		search.ID,
		string(search.Kind),
		search.Keywords,
		search.URL,
		created,
		"",
		"",
		"",
		"",
	}
	if search.LinkedIn != nil {
		row[5] = strconv.Itoa(search.LinkedIn.SearchRadius)
		row[6] = search.LinkedIn.Time
		row[7] = search.LinkedIn.SortBy
	}
	if search.Manual != nil {
		row[8] = search.Manual.Label
	}
	return row
}
