package linkedin

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/jimezsa/clockedin/internal/models"
)

// DefaultGeoID is the geoId the search form has always sent.
const DefaultGeoID = "90000070"

const (
	searchPath   = "/jobs/search/"
	guestAPIPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
)

var (
	ErrNotJobsURL      = errors.New("not a linkedin /jobs/ url")
	ErrEmptyKeywords   = errors.New("keywords are required")
	ErrInvalidRadius   = errors.New("search radius must be positive")
	ErrInvalidTimeSpan = errors.New("unknown time frame")
	ErrInvalidSort     = errors.New("unknown sort order")
)

// guestParams are copied from a search URL onto the guest results endpoint.
var guestParams = []string{"keywords", "location", "geoId", "distance", "f_TPR", "f_WT", "f_E", "f_JT", "sortBy"}

// ValidateSearch checks the search form fields.
func ValidateSearch(params models.SearchParams) error {
	if strings.TrimSpace(params.Keywords) == "" {
		return ErrEmptyKeywords
	}
	if params.SearchRadius <= 0 {
		return ErrInvalidRadius
	}
	if !models.ValidTimeFrame(params.Time) {
		return ErrInvalidTimeSpan
	}
	if !models.ValidSortBy(params.SortBy) {
		return ErrInvalidSort
	}
	return nil
}

// BuildSearchURL returns the jobs search URL for the given form fields.
func BuildSearchURL(params models.SearchParams, geoID string) string {
	if geoID == "" {
		geoID = DefaultGeoID
	}
	values := url.Values{}
	values.Set("keywords", strings.TrimSpace(params.Keywords))
	values.Set("distance", strconv.Itoa(params.SearchRadius))
	values.Set("f_TPR", params.Time)
	values.Set("sortBy", params.SortBy)
	values.Set("geoId", geoID)
	return baseURL + searchPath + "?" + values.Encode()
}

// IsJobsURL reports whether raw points at a page under linkedin.com/jobs/.
func IsJobsURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return false
	}
	return strings.HasPrefix(u.Path, "/jobs/") || strings.HasPrefix(u.Path, "/jobs-guest/")
}

// GuestPageURL maps a jobs search URL to the guest endpoint returning the
// result cards starting at offset start.
func GuestPageURL(searchURL string, start int) (string, error) {
	if !IsJobsURL(searchURL) {
		return "", ErrNotJobsURL
	}
	u, err := url.Parse(searchURL)
	if err != nil {
		return "", err
	}
	query := u.Query()
	values := url.Values{}
	for _, key := range guestParams {
		if v := query.Get(key); v != "" {
			values.Set(key, v)
		}
	}
	if start > 0 {
		values.Set("start", strconv.Itoa(start))
	}
	return baseURL + guestAPIPath + "?" + values.Encode(), nil
}
