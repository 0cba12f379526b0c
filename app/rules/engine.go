package rules

import (
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/newsfocus/collector/app/feed"
)

// Engine applies an ordered rule set to collected items. Rules are
// independent pure predicates over a single item, so evaluation of one
// rule never depends on earlier rules.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Run annotates every item with the identifiers of all matching rules,
// in rule order, and returns the annotated items plus the subsequence
// with at least one match. Item order is preserved in both outputs.
func (e *Engine) Run(items []feed.Item, ruleSet []Rule) ([]feed.Item, []feed.Item) {
	matched := make([]feed.Item, 0, len(items))

	for i := range items {
		item := &items[i]
		item.MatchedRuleIDs = nil

		for _, rule := range ruleSet {
			if e.matches(rule, *item) {
				item.MatchedRuleIDs = append(item.MatchedRuleIDs, rule.ID)
			}
		}

		if len(item.MatchedRuleIDs) > 0 {
			matched = append(matched, *item)
		}
	}

	return items, matched
}

// matches reports whether every condition of the rule holds for the
// item. A condition over a field the item cannot supply (for example a
// domain condition on an unparsable link) is treated as non-matching.
func (e *Engine) matches(rule Rule, item feed.Item) bool {
	text := normalize(item.Title + " " + item.Description)

	for _, kw := range rule.Keywords {
		if !strings.Contains(text, normalize(kw)) {
			return false
		}
	}

	for _, kw := range rule.ExcludeKeywords {
		if strings.Contains(text, normalize(kw)) {
			return false
		}
	}

	if len(rule.Categories) > 0 {
		if !containsFold(rule.Categories, item.Category) {
			return false
		}
	}

	if len(rule.Domains) > 0 {
		domain := extractDomain(item.Link)
		if domain == "" {
			slog.Debug("Item link has no usable domain, rule treated as non-matching",
				"rule", rule.ID, "link", item.Link)
			return false
		}
		if !matchesDomain(rule.Domains, domain) {
			return false
		}
	}

	return true
}

var foldCaser = cases.Fold()

// normalize folds case and compatibility-normalizes unicode so keyword
// containment is insensitive to case and width variants.
func normalize(s string) string {
	return foldCaser.String(norm.NFKC.String(s))
}

func containsFold(values []string, target string) bool {
	normalized := normalize(target)
	for _, v := range values {
		if normalize(v) == normalized {
			return true
		}
	}
	return false
}

// extractDomain returns the host of the link without a leading "www."
// prefix, or an empty string when the link cannot be parsed.
func extractDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}

func matchesDomain(domains []string, domain string) bool {
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(d), "www.")
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
