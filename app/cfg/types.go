package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Anthropic API configuration
	AnthropicAPIKey string
	AnthropicModel  string

	// Application configuration
	Port           string
	OwnerID        int
	WorkerCount    int
	TaskQueueSize  int
	DigestCron     string
	ExtractContent bool
	DashboardDir   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
