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
	// Storage configuration
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./podmirror.db" description:"Path to the SQLite database file"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the resolution cache"`

	// Extractor configuration
	SidecarURL string `long:"sidecar-url" env:"SIDECAR_URL" default:"http://localhost:8090" description:"Base URL of the youtube-dl sidecar"`
	RSSListing bool   `long:"rss-listing" env:"RSS_LISTING" description:"List YouTube channel uploads via public RSS feeds instead of the sidecar"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed definition files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://mirror.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of background workers for feed synchronization"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"PodMirror/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
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
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		SidecarURL:        raw.SidecarURL,
		RSSListing:        raw.RSSListing,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
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

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
