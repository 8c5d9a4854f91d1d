package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jimezsa/clockedin/internal/models"
)

func sampleJobs() []models.Job {
	return []models.Job{
		{
			ID:       "1",
			Title:    "Staff Engineer",
			Company:  "Beta",
			Location: "Remote",
			URL:      "https://www.linkedin.com/jobs/view/1",
			Remote:   true,
			PostedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteJobsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJobs(&buf, sampleJobs(), FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "id,title,company,location,url,remote,snippet,posted_at,posted_at_raw" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "2024-01-10T00:00:00Z") {
		t.Fatalf("expected RFC3339 posted date, got %q", lines[1])
	}
}

func TestWriteJobsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJobs(&buf, sampleJobs(), FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}
	var decoded []models.Job
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Company != "Beta" {
		t.Fatalf("unexpected decoded jobs: %+v", decoded)
	}
}

func TestWriteJobsMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJobs(&buf, nil, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}
	if buf.String() != "No results.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriteJobsTableHyperlinks(t *testing.T) {
	var buf bytes.Buffer
	opts := WriteOptions{Hyperlinks: true, LinkStyle: LinkStyleShort}
	if err := WriteJobs(&buf, sampleJobs(), FormatTable, opts); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b]8;;https://www.linkedin.com/jobs/view/1") {
		t.Fatalf("expected OSC 8 hyperlink, got %q", out)
	}
	if !strings.Contains(out, "linkedin.com/jobs/view/1") {
		t.Fatalf("expected short label, got %q", out)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"csv":      FormatCSV,
		" JSON ":   FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"tsv":      FormatTSV,
		"":         FormatTable,
		"yaml":     FormatTable,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteSearchesCSV(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	searches := []models.SavedSearch{
		{
			ID:        "a",
			Kind:      models.KindLinkedIn,
			Keywords:  `go "backend"`,
			URL:       "https://www.linkedin.com/jobs/search/?keywords=go",
			CreatedAt: created,
			LinkedIn:  &models.LinkedInSearch{SearchRadius: 25, Time: "r1800", SortBy: "DD"},
		},
		{
			ID:        "b",
			Kind:      models.KindManual,
			URL:       "https://jobs.example.com/x",
			CreatedAt: created,
			Manual:    &models.ManualSearch{Label: "Example"},
		},
	}

	var buf bytes.Buffer
	if err := WriteSearchesCSV(&buf, searches); err != nil {
		t.Fatalf("WriteSearchesCSV() error = %v", err)
	}
	want := strings.Join([]string{
		"id,kind,keywords,url,created_at,searchRadius,time,sortBy,label",
		`"a","linkedin","go ""backend""","https://www.linkedin.com/jobs/search/?keywords=go","2025-03-01T12:00:00Z","25","r1800","DD",""`,
		`"b","manual","","https://jobs.example.com/x","2025-03-01T12:00:00Z","","","","Example"`,
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteSearchesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchesCSV(&buf, nil); err != nil {
		t.Fatalf("WriteSearchesCSV() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestWriteSearchesTable(t *testing.T) {
	searches := []models.SavedSearch{{
		ID:       "a",
		Kind:     models.KindLinkedIn,
		Keywords: "golang",
		URL:      "https://www.linkedin.com/jobs/search/?keywords=golang",
		LinkedIn: &models.LinkedInSearch{SearchRadius: 10, Time: "r3600", SortBy: "R"},
	}}
	var buf bytes.Buffer
	if err := WriteSearches(&buf, searches, FormatTable, WriteOptions{}); err != nil {
		t.Fatalf("WriteSearches() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Past hour • within 10 miles • Most Relevant") {
		t.Fatalf("expected description, got %q", buf.String())
	}

	buf.Reset()
	if err := WriteSearches(&buf, nil, FormatTable, WriteOptions{}); err != nil {
		t.Fatalf("WriteSearches() error = %v", err)
	}
	if buf.String() != "No saved searches\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}
