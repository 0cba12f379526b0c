package sources

import (
	"fmt"
)

// Source is one feed provider with an ordered set of categories.
// Immutable after loading.
type Source struct {
	name       string
	categories []string
	urls       map[string]string
	fetcher    *Fetcher
}

func (s *Source) Name() string {
	return s.name
}

// Categories returns the category names in definition order.
func (s *Source) Categories() []string {
	return s.categories
}

// FeedURL returns the feed URL configured for the given category, or an
// empty string for an unknown category.
func (s *Source) FeedURL(category string) string {
	return s.urls[category]
}

// StatusError is a non-2xx HTTP response from a feed endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, e.Status)
}

// Configuration file types

type sourcesFile struct {
	Sources []sourceConfig `yaml:"sources"`
}

type sourceConfig struct {
	Name  string       `yaml:"name"`
	Feeds []feedConfig `yaml:"feeds"`
}

type feedConfig struct {
	Category string `yaml:"category"`
	URL      string `yaml:"url"`
}
