package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Backend     BackendConfig   `toml:"backend"`
	Capture     CaptureConfig   `toml:"capture"`
	Thumbnail   ThumbnailConfig `toml:"thumbnail"`
	Browser     BrowserConfig   `toml:"browser"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// BackendConfig contains connection settings for the knowledge-base backend
type BackendConfig struct {
	BaseURL        string        `toml:"base_url"`         // Backend API base URL
	BearerToken    string        `toml:"bearer_token"`     // Opaque credential supplied by the auth layer
	RequestTimeout time.Duration `toml:"request_timeout"`  // Per-call timeout for remote operations
	RateLimit      int           `toml:"rate_limit"`       // Max requests per second against the backend
	UserAgent      string        `toml:"user_agent"`       // User agent for metadata probe fetches
	ProbeFallback  bool          `toml:"probe_fallback"`   // Parse og: tags locally when the backend probe is empty
	MaxUploadSize  int64         `toml:"max_upload_size"`  // Maximum file upload size in bytes
	MaxProbeSize   int64         `toml:"max_probe_size"`   // Maximum page size fetched by the local probe
}

// CaptureConfig contains capture pipeline behavior settings
type CaptureConfig struct {
	MaxTags          int           `toml:"max_tags"`          // Maximum tags per draft
	DebounceWindow   time.Duration `toml:"debounce_window"`   // Quiescence window after a sourceRef edit
	QueuedDomains    []string      `toml:"queued_domains"`    // Domains routed to queued extraction
	PersistDrafts    bool          `toml:"persist_drafts"`    // Snapshot drafts to local storage on mutation
	UntitledSentinel string        `toml:"untitled_sentinel"` // Extraction title treated as a placeholder
}

// ThumbnailConfig contains client-side thumbnail derivation settings
type ThumbnailConfig struct {
	MaxWidth    int           `toml:"max_width"`    // Downscale target width in pixels
	JPEGQuality int           `toml:"jpeg_quality"` // JPEG encode quality (1-100)
	VideoSeek   time.Duration `toml:"video_seek"`   // Position of the captured still frame
}

// BrowserConfig contains headless Chrome settings for video frame capture
type BrowserConfig struct {
	Headless       bool          `toml:"headless"`
	DisableGPU     bool          `toml:"disable_gpu"`
	NoSandbox      bool          `toml:"no_sandbox"`
	CaptureTimeout time.Duration `toml:"capture_timeout"` // Upper bound for a single frame capture
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in colligo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8710,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:3030/api",
			RequestTimeout: 30 * time.Second,
			RateLimit:      10,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ProbeFallback:  true,
			MaxUploadSize:  50 * 1024 * 1024, // 50MB
			MaxProbeSize:   10 * 1024 * 1024, // 10MB
		},
		Capture: CaptureConfig{
			MaxTags:        10,
			DebounceWindow: 1 * time.Second,
			QueuedDomains: []string{
				"youtube.com",
				"youtu.be",
				"vimeo.com",
				"tiktok.com",
			},
			PersistDrafts:    true,
			UntitledSentinel: "Untitled",
		},
		Thumbnail: ThumbnailConfig{
			MaxWidth:    640,
			JPEGQuality: 80,
			VideoSeek:   1 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			DisableGPU:     true,
			NoSandbox:      false,
			CaptureTimeout: 20 * time.Second,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// ApplyFlagOverrides applies command-line flag values on top of the loaded
// configuration. Zero values mean the flag was not supplied.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies COLLIGO_* environment variables
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("COLLIGO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("COLLIGO_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("COLLIGO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("COLLIGO_BACKEND_URL"); v != "" {
		config.Backend.BaseURL = v
	}
	if v := os.Getenv("COLLIGO_BEARER_TOKEN"); v != "" {
		config.Backend.BearerToken = v
	}
	if v := os.Getenv("COLLIGO_DATA_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
}
