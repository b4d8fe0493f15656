// Package property loads and caches apartment configuration files.
package property

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okhomenko/staysync/app/ical"
)

var validSources = map[string]bool{
	"airbnb":  true,
	"booking": true,
	"manual":  true,
}

type ConfigCache struct {
	propertiesDir string
	cache         map[string]*Config
	mu            sync.RWMutex
}

func NewConfigCache(propertiesDir string) *ConfigCache {
	return &ConfigCache{
		propertiesDir: propertiesDir,
		cache:         make(map[string]*Config),
	}
}

// Run loads every *.yml file in the properties directory. A missing
// directory is not an error: properties can also be created through
// the API.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.propertiesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.propertiesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		configName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Property configuration loaded", "property", configName,
			"active", config.Active, "feeds", len(config.Feeds))
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(configName string) (*Config, error) {
	configFile := filepath.Join(cc.propertiesDir, configName+".yml")

	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = configName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(configName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[configName]
	if !ok {
		return nil, fmt.Errorf("property config with name '%s' not found", configName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config := Config{Active: true}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Beds == 0 {
		config.Beds = 1
	}
	if config.MaxGuests == 0 {
		config.MaxGuests = 2
	}
	if config.CheckInTime == "" {
		config.CheckInTime = "15:00"
	}
	if config.CheckOutTime == "" {
		config.CheckOutTime = "11:00"
	}

	// Fix each feed's source tag at load time.
	for i := range config.Feeds {
		if config.Feeds[i].Source == "" {
			config.Feeds[i].Source = ical.SourceFromURL(config.Feeds[i].URL)
		}
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.DisplayName == "" {
		return fmt.Errorf("property name is required")
	}

	for i, feed := range config.Feeds {
		if !ical.IsValidURL(feed.URL) {
			return fmt.Errorf("invalid feed URL at index %d: %s", i, feed.URL)
		}
		if !validSources[feed.Source] {
			return fmt.Errorf("invalid feed source at index %d: %s", i, feed.Source)
		}
	}

	return nil
}
