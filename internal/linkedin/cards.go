package linkedin

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/clockedin/internal/models"
	xhtml "golang.org/x/net/html"
)

const baseURL = "https://www.linkedin.com"

var cardGroup = strings.Join(CardSelectors, ", ")

// Cards returns the job cards under root in document order. A card nested
// inside another matched card is folded into the outer one.
func Cards(root *goquery.Selection) *goquery.Selection {
	all := root.Find(cardGroup)
	if all.Length() < 2 {
		return all
	}
	matched := make(map[*xhtml.Node]struct{}, all.Length())
	for _, n := range all.Nodes {
		matched[n] = struct{}{}
	}
	return all.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for p := s.Get(0).Parent; p != nil; p = p.Parent {
			if _, ok := matched[p]; ok {
				return false
			}
		}
		return true
	})
}

// CompanyName extracts the displayed company of card. It returns "" when
// no recognized element carries text.
func CompanyName(card *goquery.Selection) string {
	return firstText(card, CompanySelectors)
}

// ParseJobs extracts the visible cards under root.
func ParseJobs(root *goquery.Selection) []models.Job {
	var jobs []models.Job
	Cards(root).Each(func(_ int, card *goquery.Selection) {
		if job, ok := JobFromCard(card); ok {
			jobs = append(jobs, job)
		}
	})
	return jobs
}

// JobFromCard extracts one card. It reports false when the card shows
// neither a title nor a company.
func JobFromCard(card *goquery.Selection) (models.Job, bool) {
	job := models.Job{
		Title:    firstText(card, titleSelectors),
		Company:  CompanyName(card),
		Location: firstText(card, locationSelectors),
		Snippet:  truncate(firstText(card, snippetSelectors), 240),
	}
	for _, selector := range linkSelectors {
		if href, ok := card.Find(selector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			job.URL = canonicalJobURL(absoluteURL(baseURL, strings.TrimSpace(href)))
			break
		}
	}
	job.ID = JobID(job.URL)
	if job.ID == "" {
		job.ID = attrID(card)
	}
	if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
		job.PostedAtRaw = strings.TrimSpace(datetime)
		if ts, err := parsePostedAt(job.PostedAtRaw); err == nil {
			job.PostedAt = ts
		}
	}
	job.Remote = isRemote(job.Location, job.Snippet)
	if job.Title == "" && job.Company == "" {
		return job, false
	}
	return job, true
}

// attrID reads the posting ID some markups carry as an attribute, on the
// card or its first descendant that has one.
func attrID(card *goquery.Selection) string {
	if id, ok := card.Attr("data-occludable-job-id"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	urn, ok := card.Attr("data-entity-urn")
	if !ok {
		urn, ok = card.Find("[data-entity-urn]").First().Attr("data-entity-urn")
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(urn[strings.LastIndex(urn, ":")+1:])
}

// JobID returns the numeric posting ID at the end of a /jobs/view/ URL.
func JobID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, "/jobs/view/") {
		return ""
	}
	segment := strings.Trim(u.Path[strings.LastIndex(strings.TrimRight(u.Path, "/"), "/")+1:], "/")
	end := len(segment)
	start := end
	for start > 0 && segment[start-1] >= '0' && segment[start-1] <= '9' {
		start--
	}
	return segment[start:end]
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanText(card.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func isRemote(values ...string) bool {
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), "remote") {
			return true
		}
	}
	return false
}

func canonicalJobURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, "/jobs/view/") {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	parsedBase, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return parsedBase.ResolveReference(ref).String()
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return strings.TrimSpace(value[:max]) + "..."
}
