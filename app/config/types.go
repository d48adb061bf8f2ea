package config

// FeedConfig represents a declarative feed definition
type FeedConfig struct {
	Feed     FeedInfo     `yaml:"feed"`
	Settings FeedSettings `yaml:"settings"`
}

// FeedInfo identifies the upstream source and media selection
type FeedInfo struct {
	URL     string `yaml:"url"`
	Format  string `yaml:"format"`
	Quality string `yaml:"quality"`
}

// FeedSettings contains feed synchronization settings
type FeedSettings struct {
	PageSize       int `yaml:"page_size"`
	UpdateInterval int `yaml:"update_interval"` // seconds
}
