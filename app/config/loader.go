package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/podmirror/podmirror/app/link"
	"github.com/podmirror/podmirror/app/model"
	"github.com/podmirror/podmirror/app/sync"
)

// Loader handles loading and validation of feed definitions
type Loader struct {
	feedsDir string
}

// NewLoader creates a new feed definition loader
func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// LoadAll loads all YAML feed definitions from the feeds directory
func (l *Loader) LoadAll() (map[string]*FeedConfig, error) {
	configs := make(map[string]*FeedConfig)

	// Check if feeds directory exists
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return configs, nil // Return empty map if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	// Also check for .yml extension
	ymlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid definition %s: %w", file, err)
		}

		configs[file] = config
		log.Printf("Loaded feed definition from %s", file)
	}

	return configs, nil
}

// loadFile loads a single YAML feed definition file
func (l *Loader) loadFile(path string) (*FeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config FeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Set defaults
	l.setDefaults(&config)

	return &config, nil
}

// setDefaults applies default values to a feed definition
func (l *Loader) setDefaults(config *FeedConfig) {
	if config.Feed.Format == "" {
		config.Feed.Format = string(model.FormatVideo)
	}
	if config.Feed.Quality == "" {
		config.Feed.Quality = string(model.QualityHigh)
	}
	if config.Settings.PageSize == 0 {
		config.Settings.PageSize = 50
	}
	if config.Settings.UpdateInterval == 0 {
		config.Settings.UpdateInterval = 3600 // seconds
	}
}

// validate validates a feed definition
func (l *Loader) validate(config *FeedConfig) error {
	if config.Feed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if _, err := link.Parse(config.Feed.URL); err != nil {
		return fmt.Errorf("unsupported feed URL: %w", err)
	}

	if _, err := model.FormatSpec(model.Format(config.Feed.Format), model.Quality(config.Feed.Quality)); err != nil {
		return err
	}

	if config.Settings.PageSize < 0 {
		return fmt.Errorf("page size must be non-negative")
	}
	if config.Settings.PageSize > sync.MaxCount {
		return fmt.Errorf("page size must not exceed %d", sync.MaxCount)
	}
	if config.Settings.UpdateInterval < 0 {
		return fmt.Errorf("update interval must be non-negative")
	}

	return nil
}
