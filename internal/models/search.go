package models

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// SearchKind tags the variant held by a SavedSearch.
type SearchKind string

const (
	KindLinkedIn SearchKind = "linkedin"
	KindManual   SearchKind = "manual"
)

// Time frame values accepted by LinkedIn's f_TPR parameter.
const (
	TimeFrame30Minutes = "r1800"
	TimeFrameHour      = "r3600"
	TimeFrame2Hours    = "r7200"
	TimeFrame24Hours   = "r86400"
)

// Sort values accepted by LinkedIn's sortBy parameter.
const (
	SortMostRecent = "DD"
	SortRelevance  = "R"
)

var ErrInvalidManualURL = errors.New("manual search url must have a registrable domain")

// SearchParams holds the form fields of a LinkedIn search.
type SearchParams struct {
	Keywords     string `json:"keywords"`
	SearchRadius int    `json:"searchRadius"`
	Time         string `json:"time"`
	SortBy       string `json:"sortBy"`
}

// DefaultSearchParams mirrors the defaults of the search form.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		SearchRadius: 25,
		Time:         TimeFrame30Minutes,
		SortBy:       SortMostRecent,
	}
}

// LinkedInSearch is a search built from form fields.
type LinkedInSearch struct {
	SearchRadius int    `json:"searchRadius"`
	Time         string `json:"time"`
	SortBy       string `json:"sortBy"`
}

// ManualSearch is a search URL pasted in by the user.
type ManualSearch struct {
	Label string `json:"label"`
}

// SavedSearch is a persisted search. Exactly one of LinkedIn or Manual is
// set, matching Kind.
type SavedSearch struct {
	ID        string          `json:"id"`
	Kind      SearchKind      `json:"kind"`
	Keywords  string          `json:"keywords"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
	LinkedIn  *LinkedInSearch `json:"linkedin,omitempty"`
	Manual    *ManualSearch   `json:"manual,omitempty"`
}

// Valid reports whether the variant fields agree with Kind.
func (s SavedSearch) Valid() bool {
	switch s.Kind {
	case KindLinkedIn:
		return s.LinkedIn != nil && s.Manual == nil
	case KindManual:
		return s.Manual != nil && s.LinkedIn == nil
	default:
		return false
	}
}

// Describe returns the one-line summary shown next to a saved search.
func (s SavedSearch) Describe() string {
	switch s.Kind {
	case KindLinkedIn:
		if s.LinkedIn == nil {
			return ""
		}
		return DecodeTimeFrame(s.LinkedIn.Time) + " • within " + strconv.Itoa(s.LinkedIn.SearchRadius) + " miles • " + DecodeSortBy(s.LinkedIn.SortBy)
	case KindManual:
		if s.Manual == nil {
			return ""
		}
		return s.Manual.Label
	}
	return ""
}

var timeFrames = map[string]string{
	TimeFrame30Minutes: "Past 30 minutes",
	TimeFrameHour:      "Past hour",
	TimeFrame2Hours:    "Past 2 hours",
	TimeFrame24Hours:   "Past 24 hours",
}

var sortOrders = map[string]string{
	SortMostRecent: "Most Recent",
	SortRelevance:  "Most Relevant",
}

// DecodeTimeFrame maps an f_TPR value to its label. Unknown values are
// returned unchanged.
func DecodeTimeFrame(value string) string {
	if label, ok := timeFrames[value]; ok {
		return label
	}
	return value
}

// DecodeSortBy maps a sortBy value to its label.
func DecodeSortBy(value string) string {
	if label, ok := sortOrders[value]; ok {
		return label
	}
	return value
}

// ValidTimeFrame reports whether value is a known f_TPR value.
func ValidTimeFrame(value string) bool {
	_, ok := timeFrames[value]
	return ok
}

// ValidSortBy reports whether value is a known sortBy value.
func ValidSortBy(value string) bool {
	_, ok := sortOrders[value]
	return ok
}

// BaseDomainLabel returns the capitalized registrable domain of raw without
// its public suffix, e.g. "https://jobs.lever.co/x" -> "Lever".
func BaseDomainLabel(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return "", ErrInvalidManualURL
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return "", ErrInvalidManualURL
	}
	suffix, _ := publicsuffix.PublicSuffix(domain)
	name := strings.TrimSuffix(strings.TrimSuffix(domain, suffix), ".")
	if name == "" {
		return "", ErrInvalidManualURL
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:], nil
}
