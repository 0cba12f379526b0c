package sources

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the sources definition file and builds the source
// registry. Source and category order follows the file.
type Loader struct {
	fetcher *Fetcher
}

func NewLoader(fetcher *Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load parses the YAML sources file at path.
func (l *Loader) Load(path string) ([]*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	seen := make(map[string]bool)
	registry := make([]*Source, 0, len(file.Sources))
	for i, sc := range file.Sources {
		src, err := l.buildSource(sc)
		if err != nil {
			return nil, fmt.Errorf("invalid source at index %d: %w", i, err)
		}
		if seen[src.name] {
			return nil, fmt.Errorf("duplicate source name: %s", src.name)
		}
		seen[src.name] = true
		registry = append(registry, src)
	}

	slog.Debug("Sources loaded", "file", path, "count", len(registry))

	return registry, nil
}

func (l *Loader) buildSource(sc sourceConfig) (*Source, error) {
	if sc.Name == "" {
		return nil, fmt.Errorf("source name is required")
	}

	src := &Source{
		name:       sc.Name,
		categories: make([]string, 0, len(sc.Feeds)),
		urls:       make(map[string]string, len(sc.Feeds)),
		fetcher:    l.fetcher,
	}

	for _, fc := range sc.Feeds {
		if fc.Category == "" {
			return nil, fmt.Errorf("source %q has a feed without a category", sc.Name)
		}
		if _, exists := src.urls[fc.Category]; exists {
			return nil, fmt.Errorf("source %q has duplicate category %q", sc.Name, fc.Category)
		}
		parsed, err := url.Parse(fc.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("source %q category %q has invalid feed URL %q", sc.Name, fc.Category, fc.URL)
		}
		src.categories = append(src.categories, fc.Category)
		src.urls[fc.Category] = fc.URL
	}

	return src, nil
}
