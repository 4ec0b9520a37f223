package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"tabmemory" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"tabmemory" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"tabmemory" description:"Database name"`

	// Anthropic API configuration
	AnthropicAPIKey string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key for summaries and digests"`
	AnthropicModel  string `long:"anthropic-model" env:"ANTHROPIC_MODEL" default:"claude-3-5-sonnet-20241022" description:"Anthropic model used for summaries and digests"`

	// Application configuration
	Port           string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	OwnerID        int    `long:"owner-id" env:"OWNER_ID" default:"1" description:"Owner identifier scoping all stored records"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for enrichment tasks"`
	TaskQueueSize  int    `long:"task-queue-size" env:"TASK_QUEUE_SIZE" default:"100" description:"Capacity of the enrichment task queue"`
	DigestCron     string `long:"digest-cron" env:"DIGEST_CRON" description:"Cron expression for scheduled digest generation (disabled when empty)"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch and extract page content server-side for tabs saved without text"`
	DashboardDir   string `long:"dashboard-dir" env:"DASHBOARD_DIR" default:"./dashboard" description:"Directory containing the prebuilt dashboard assets"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TabMemory/1.0" description:"User agent string for HTTP requests"`
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
		DBHost:          raw.DBHost,
		DBPort:          raw.DBPort,
		DBUser:          raw.DBUser,
		DBPassword:      raw.DBPassword,
		DBName:          raw.DBName,
		AnthropicAPIKey: raw.AnthropicAPIKey,
		AnthropicModel:  raw.AnthropicModel,
		Port:            raw.Port,
		OwnerID:         raw.OwnerID,
		WorkerCount:     raw.WorkerCount,
		TaskQueueSize:   raw.TaskQueueSize,
		DigestCron:      raw.DigestCron,
		ExtractContent:  raw.ExtractContent,
		DashboardDir:    raw.DashboardDir,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
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
		}
	}
	return nil
}
