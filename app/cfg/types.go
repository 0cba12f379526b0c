package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Collection configuration
	SourcesFile    string
	RulesFile      string
	WorkerCount    int
	CollectTimeout int // seconds
	UserAgent      string
	ExtractContent bool

	// HTTP API configuration
	Serve bool
	Port  string

	// Maintenance
	Purge bool

	// Application metadata
	Debug   bool
	Version string
}
