package rules

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the rule definition file. Rule order in the file is the
// rule order everywhere downstream.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses and validates the YAML rule file at path. An empty rule
// list is valid.
func (l *Loader) Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	seen := make(map[string]bool)
	for i, rule := range file.Rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule at index %d has no id", i)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("duplicate rule id: %s", rule.ID)
		}
		seen[rule.ID] = true

		if len(rule.Keywords) == 0 && len(rule.ExcludeKeywords) == 0 &&
			len(rule.Categories) == 0 && len(rule.Domains) == 0 {
			return nil, fmt.Errorf("rule %q has no conditions", rule.ID)
		}
		for _, kw := range rule.Keywords {
			if kw == "" {
				return nil, fmt.Errorf("rule %q has an empty keyword", rule.ID)
			}
		}
	}

	slog.Debug("Rules loaded", "file", path, "count", len(file.Rules))

	return file.Rules, nil
}
