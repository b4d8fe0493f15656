package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./staysync.db" description:"Path to the sqlite database file"`

	// Application configuration
	PropertiesDir string `long:"properties-dir" env:"PROPERTIES_DIR" default:"./properties" description:"Directory containing property configuration files"`
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for calendar sync"`
	SyncInterval  int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"30" description:"Minutes between scheduled calendar sync runs"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Timeout in seconds for a single feed fetch"`
	APIAccessKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"StaySync/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Kyiv)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		DBPath:        raw.DBPath,
		PropertiesDir: raw.PropertiesDir,
		Port:          raw.Port,
		WorkerCount:   raw.WorkerCount,
		SyncInterval:  raw.SyncInterval,
		FetchTimeout:  raw.FetchTimeout,
		APIAccessKey:  raw.APIAccessKey,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
