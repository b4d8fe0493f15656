package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	PropertiesDir string
	Port          string
	WorkerCount   int
	SyncInterval  int // minutes between scheduled sync runs
	FetchTimeout  int // seconds for a single feed fetch
	APIAccessKey  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
