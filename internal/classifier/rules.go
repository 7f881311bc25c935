package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

// DefaultKeywords in priority order.
var DefaultKeywords = []string{
	"unsubscribe", "sale", "discount", "offer", "limited time",
	"promotion", "deal", "subscription", "marketing", "newsletter",
	"advertisement", "promotional", "coupon", "off selected", "clearance",
	"special offer", "exclusive offer", "best deal", "free shipping",
}

// DefaultPatterns in priority order. They are matched case-insensitively.
var DefaultPatterns = []string{
	`\b\d+%\s+off\b`,
	`\bsave\s+\d+%?\b`,
	`\bfree\s+shipping\b`,
	`\blimited\s+time\b`,
	`\bspecial\s+offer\b`,
	`\bsubscribe\b`,
	`\bnewsletter\b`,
}

type pattern struct {
	source string
	re     *regexp.Regexp
}

// Rules is the deterministic stage: case-insensitive substrings first, then
// regular expressions, each in declaration order, applied to the subject and
// the body. Rules never errors and does not consult any model.
type Rules struct {
	keywords []string
	patterns []pattern
}

// NewRules compiles patterns. Keywords are matched as lowercase substrings.
func NewRules(keywords, patterns []string) (*Rules, error) {
	r := &Rules{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		r.keywords = append(r.keywords, strings.ToLower(k))
	}

	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, pattern{source: p, re: re})
	}
	return r, nil
}

// DefaultRules returns the built-in advertising rules.
func DefaultRules() *Rules {
	r, err := NewRules(DefaultKeywords, DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return r
}

// Classify returns on the first matching keyword or pattern.
func (r *Rules) Classify(c message.Content) Result {
	subject := strings.ToLower(c.Subject)
	body := strings.ToLower(c.BodyText)

	for _, k := range r.keywords {
		if strings.Contains(subject, k) || strings.Contains(body, k) {
			return Result{Unwanted: true, Rule: k}
		}
	}

	for _, p := range r.patterns {
		if p.re.MatchString(subject) || p.re.MatchString(body) {
			return Result{Unwanted: true, Rule: p.source}
		}
	}

	return Result{}
}
