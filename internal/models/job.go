package models

import "time"

// Job is a listing card that survived filtering, as extracted from the page.
type Job struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	Remote      bool      `json:"remote,omitempty"`
	Snippet     string    `json:"snippet,omitempty"`
	PostedAt    time.Time `json:"posted_at,omitempty"`
	PostedAtRaw string    `json:"posted_at_raw,omitempty"`
}
