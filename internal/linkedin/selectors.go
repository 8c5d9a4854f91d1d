// Package linkedin knows the markup and URLs of LinkedIn's job pages.
package linkedin

// The host page offers no contract for its markup. Every list below is
// ordered from most to least specific and may silently stop matching when
// the page changes.

// ContainerSelectors locate the element holding the result cards. The
// bare "ul" is a last resort.
var ContainerSelectors = []string{
	"ul[data-test-reusables-search-result-list]",
	"ul.jobs-search__results-list",
	"ul.jobs-search-results__list",
	"ul.scaffold-layout__list-container",
	"ul",
}

// CardSelectors match one rendered job card, signed-in and guest markup.
var CardSelectors = []string{
	"li[data-occludable-job-id]",
	"li.scaffold-layout__list-item",
	"li.jobs-search-results__list-item",
	"ul.jobs-search__results-list > li",
	"div.job-card-container",
	"div.base-card",
	"div.job-search-card",
}

// CompanySelectors match the element showing the company name in a card.
var CompanySelectors = []string{
	"div.artdeco-entity-lockup__subtitle span",
	".job-card-container__primary-description",
	".job-card-container__company-name",
	"h4.base-search-card__subtitle",
}

var (
	titleSelectors = []string{
		"h3.base-search-card__title",
		"a.job-card-list__title",
		".job-card-list__title--link",
		"div.artdeco-entity-lockup__title",
	}
	locationSelectors = []string{
		"span.job-search-card__location",
		"ul.job-card-container__metadata-wrapper li",
		"div.artdeco-entity-lockup__caption",
	}
	linkSelectors = []string{
		"a.base-card__full-link",
		"a.job-card-container__link",
		"a.job-card-list__title",
	}
	snippetSelectors = []string{
		"div.job-search-card__snippet",
		"p.job-search-card__snippet",
	}
)
