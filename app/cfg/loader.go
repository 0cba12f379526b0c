package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/newsfocus.db" description:"Path to the SQLite database file"`

	// Collection configuration
	SourcesFile    string `long:"sources" env:"SOURCES_FILE" default:"./sources.yml" description:"Path to the news sources definition file"`
	RulesFile      string `long:"rules" env:"RULES_FILE" default:"./rules.yml" description:"Path to the scraping rules definition file"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"10" description:"Number of concurrent feed fetch workers"`
	CollectTimeout int    `long:"collect-timeout" env:"COLLECT_TIMEOUT" default:"120" description:"Overall collection deadline in seconds"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"News Focus/1.0" description:"User agent string for HTTP requests"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Extract full article content for matched items"`

	// HTTP API configuration
	Serve bool   `long:"serve" env:"SERVE" description:"Keep serving the read-only JSON API after the collection run"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP API port"`

	// Maintenance
	Purge bool `long:"purge" description:"Remove all stored rules, items and relations, then exit"`

	// Application metadata
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		SourcesFile:    raw.SourcesFile,
		RulesFile:      raw.RulesFile,
		WorkerCount:    raw.WorkerCount,
		CollectTimeout: raw.CollectTimeout,
		UserAgent:      raw.UserAgent,
		ExtractContent: raw.ExtractContent,
		Serve:          raw.Serve,
		Port:           raw.Port,
		Purge:          raw.Purge,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.CollectTimeout < 1 {
		return nil, fmt.Errorf("collect timeout must be at least 1 second, got %d", cfg.CollectTimeout)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
