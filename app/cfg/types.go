package cfg

type Cfg struct {
	// Storage configuration
	DBPath    string
	RedisAddr string

	// Extractor configuration
	SidecarURL string
	RSSListing bool

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
