// Package seen remembers which listings were already reported so repeated
// runs only surface new ones. It is an output concern; the filter itself
// keeps no history.
package seen

import (
	"strings"

	"github.com/jimezsa/clockedin/internal/models"
)

const keySeparator = "::"

// Normalize lowercases value and collapses its whitespace.
func Normalize(value string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// Key identifies a listing: by posting ID when the page exposed one,
// otherwise by title and company.
func Key(job models.Job) (string, bool) {
	if id := strings.TrimSpace(job.ID); id != "" {
		return "id" + keySeparator + id, true
	}
	title := Normalize(job.Title)
	company := Normalize(job.Company)
	if title == "" || company == "" {
		return "", false
	}
	return title + keySeparator + company, true
}

// Tracker is an in-memory set of reported listings.
type Tracker struct {
	keys map[string]struct{}
}

// NewTracker starts a tracker that already knows history.
func NewTracker(history []models.Job) *Tracker {
	t := &Tracker{keys: make(map[string]struct{}, len(history))}
	for _, job := range history {
		if key, ok := Key(job); ok {
			t.keys[key] = struct{}{}
		}
	}
	return t
}

// Fresh returns the jobs not reported before, in order, and marks them.
// Jobs without a usable key are never reported.
func (t *Tracker) Fresh(jobs []models.Job) []models.Job {
	var out []models.Job
	for _, job := range jobs {
		key, ok := Key(job)
		if !ok {
			continue
		}
		if _, exists := t.keys[key]; exists {
			continue
		}
		t.keys[key] = struct{}{}
		out = append(out, job)
	}
	return out
}

// Len is the number of remembered listings.
func (t *Tracker) Len() int {
	return len(t.keys)
}

// Diff returns the jobs of current missing from history, deduplicated.
func Diff(current []models.Job, history []models.Job) []models.Job {
	return NewTracker(history).Fresh(current)
}

// Merge appends the jobs of input missing from history. Existing entries
// win collisions. The second result is how many were added.
func Merge(history []models.Job, input []models.Job) ([]models.Job, int) {
	added := Diff(input, history)
	out := make([]models.Job, 0, len(history)+len(added))
	out = append(out, history...)
	out = append(out, added...)
	return out, len(added)
}
