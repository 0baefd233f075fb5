package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`
	LogLevel   string `json:"log_level"`
	LogFormat  string `json:"log_format"`

	// Directories
	DataDirectory      string `json:"data_directory"`
	UploadsDirectory   string `json:"uploads_directory"`
	TemplatesDirectory string `json:"templates_directory"`
	StaticDirectory    string `json:"static_directory"`

	// File paths
	CategoriesFile  string `json:"categories_file"`
	SampleStatement string `json:"sample_statement"`

	// Limits
	MaxUploadBytes int64         `json:"max_upload_bytes"`
	AnalysisTTL    time.Duration `json:"analysis_ttl"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:         ":8080",
		Debug:              false,
		LogLevel:           "info",
		LogFormat:          "text",
		DataDirectory:      filepath.Join(wd, "data"),
		UploadsDirectory:   filepath.Join(wd, "data", "uploads"),
		TemplatesDirectory: filepath.Join(wd, "web", "templates"),
		StaticDirectory:    filepath.Join(wd, "web", "static"),
		CategoriesFile:     filepath.Join(wd, "data", "categories.yaml"),
		SampleStatement:    filepath.Join(wd, "testdata", "sample_statement.csv"),
		MaxUploadBytes:     10 << 20,
		AnalysisTTL:        2 * time.Hour,
	}
}

// Load loads configuration from a .env file (if present) and environment variables
func Load() *Config {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.applyEnv()
	cfg.ensureDirectories()

	return cfg
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("FINLENS_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if debug := os.Getenv("FINLENS_DEBUG"); debug == "true" || debug == "1" {
		c.Debug = true
		c.LogLevel = "debug"
	}
	if level := os.Getenv("FINLENS_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv("FINLENS_LOG_FORMAT"); format != "" {
		c.LogFormat = format
	}
	if dataDir := os.Getenv("FINLENS_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
		c.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.CategoriesFile = filepath.Join(dataDir, "categories.yaml")
	}
	if templatesDir := os.Getenv("FINLENS_TEMPLATES_DIR"); templatesDir != "" {
		c.TemplatesDirectory = templatesDir
	}
	if staticDir := os.Getenv("FINLENS_STATIC_DIR"); staticDir != "" {
		c.StaticDirectory = staticDir
	}
	if categories := os.Getenv("FINLENS_CATEGORIES_FILE"); categories != "" {
		c.CategoriesFile = categories
	}
	if sample := os.Getenv("FINLENS_SAMPLE_STATEMENT"); sample != "" {
		c.SampleStatement = sample
	}
	if max := os.Getenv("FINLENS_MAX_UPLOAD_BYTES"); max != "" {
		if n, err := strconv.ParseInt(max, 10, 64); err == nil && n > 0 {
			c.MaxUploadBytes = n
		} else {
			log.Warn("ignoring invalid FINLENS_MAX_UPLOAD_BYTES", "value", max)
		}
	}
	if ttl := os.Getenv("FINLENS_ANALYSIS_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d >= 0 {
			c.AnalysisTTL = d
		} else {
			log.Warn("ignoring invalid FINLENS_ANALYSIS_TTL", "value", ttl)
		}
	}
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn("could not create directory", "dir", dir, "err", err)
		}
	}
}
