package collector

import (
	"context"
	"fmt"

	"github.com/newsfocus/collector/app/feed"
)

// Source is the capability the collector consumes from the source
// registry. Implemented by sources.Source.
type Source interface {
	Name() string
	Categories() []string
	FeedURL(category string) string
	Fetch(ctx context.Context, category string) ([]byte, error)
}

// Parser converts raw feed data into normalized items. Implemented by
// feed.Parser.
type Parser interface {
	Run(data []byte, sourceName, category string) ([]feed.Item, error)
}

// Task is one (source, category) unit of fetch work.
type Task struct {
	Source   Source
	Category string
}

// ErrorKind classifies a per-task fetch failure.
type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout"
	KindNetwork ErrorKind = "network"
	KindHTTP    ErrorKind = "http"
	KindParse   ErrorKind = "parse"
)

// FetchError is a classified per-task failure. It is carried as a value
// inside a Result rather than propagated across the worker boundary.
type FetchError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error for feed '%s': %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one task: either parsed items or a
// classified failure, never both.
type Result struct {
	SourceName string
	Category   string
	URL        string
	Items      []feed.Item
	Err        *FetchError
}
