package filter

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/clockedin/internal/dom"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/matcher"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Scanner removes the job cards of blocked companies.
type Scanner struct {
	logger zerolog.Logger
}

func NewScanner(logger zerolog.Logger) *Scanner {
	return &Scanner{logger: logger.With().Str("component", "scanner").Logger()}
}

// Scan removes every card under root whose company is in blockList and
// returns how many were removed. Cards without a readable company stay.
// Running it again on the same tree removes nothing.
func (s *Scanner) Scan(doc *dom.Document, root *html.Node, blockList []string) int {
	if doc == nil || root == nil {
		return 0
	}
	set := matcher.NewSet(blockList)
	if len(set) == 0 {
		return 0
	}

	cards := linkedin.Cards(goquery.NewDocumentFromNode(root).Selection)
	removed := 0
	skipped := 0
	cards.Each(func(_ int, card *goquery.Selection) {
		company := linkedin.CompanyName(card)
		if company == "" {
			skipped++
			return
		}
		if !set.Match(company) {
			return
		}
		if doc.Remove(card.Get(0)) {
			removed++
			s.logger.Debug().Str("company", company).Msg("removed listing")
		}
	})

	s.logger.Debug().
		Int("cards", cards.Length()).
		Int("removed", removed).
		Int("skipped", skipped).
		Msg("scan finished")
	return removed
}
