package rules

// Rule is one ordered matching predicate from the rule file. All
// conditions of a rule must hold for an item to match it. Rules are
// immutable after loading and their file order is significant: it is
// preserved through matching and persistence.
type Rule struct {
	ID              string   `yaml:"id"`
	Keywords        []string `yaml:"keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Categories      []string `yaml:"categories"`
	Domains         []string `yaml:"domains"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}
