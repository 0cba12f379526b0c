package sources

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write sources file: %v", err)
	}
	return path
}

func newTestLoader() *Loader {
	return NewLoader(NewFetcher(http.DefaultClient, "test-agent"))
}

func TestLoadSources(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: bbc
    feeds:
      - category: world
        url: https://feeds.bbci.co.uk/news/world/rss.xml
      - category: tech
        url: https://feeds.bbci.co.uk/news/technology/rss.xml
  - name: cna
    feeds:
      - category: world
        url: https://www.channelnewsasia.com/rssfeeds/8395884
`)

	registry, err := newTestLoader().Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(registry) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(registry))
	}

	// Source order follows the file
	if registry[0].Name() != "bbc" {
		t.Errorf("Expected first source 'bbc', got '%s'", registry[0].Name())
	}
	if registry[1].Name() != "cna" {
		t.Errorf("Expected second source 'cna', got '%s'", registry[1].Name())
	}

	// Category order follows the file
	cats := registry[0].Categories()
	if len(cats) != 2 || cats[0] != "world" || cats[1] != "tech" {
		t.Errorf("Expected categories [world tech], got %v", cats)
	}

	if url := registry[0].FeedURL("tech"); url != "https://feeds.bbci.co.uk/news/technology/rss.xml" {
		t.Errorf("Unexpected feed URL: %s", url)
	}
	if url := registry[0].FeedURL("unknown"); url != "" {
		t.Errorf("Expected empty URL for unknown category, got %s", url)
	}
}

func TestLoadSourcesWithZeroCategories(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: empty
    feeds: []
`)

	registry, err := newTestLoader().Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(registry) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(registry))
	}
	if len(registry[0].Categories()) != 0 {
		t.Errorf("Expected zero categories, got %v", registry[0].Categories())
	}
}

func TestLoadSourcesValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"missing name",
			`
sources:
  - feeds:
      - category: world
        url: https://example.com/rss
`,
		},
		{
			"duplicate source name",
			`
sources:
  - name: bbc
    feeds: []
  - name: bbc
    feeds: []
`,
		},
		{
			"missing category",
			`
sources:
  - name: bbc
    feeds:
      - url: https://example.com/rss
`,
		},
		{
			"duplicate category",
			`
sources:
  - name: bbc
    feeds:
      - category: world
        url: https://example.com/rss
      - category: world
        url: https://example.com/other
`,
		},
		{
			"invalid url",
			`
sources:
  - name: bbc
    feeds:
      - category: world
        url: not-a-url
`,
		},
	}

	for _, tc := range cases {
		path := writeSourcesFile(t, tc.content)
		if _, err := newTestLoader().Load(path); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	if _, err := newTestLoader().Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing sources file")
	}
}
