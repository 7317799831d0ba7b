package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultSessionTTL     = 30 * time.Minute
	DefaultMaxSessions    = 100
	DefaultFetchTimeout   = 30 * time.Second
	DefaultFetchCacheSize = 16
	DefaultPreviewDPI     = 96

	// Preview resolution bounds
	MinPreviewDPI = 36
	MaxPreviewDPI = 600

	// EnvPrefix prefixes every environment variable, e.g. PDF_WORKDESK_PORT
	EnvPrefix = "PDF_WORKDESK"
)

// Config holds all configuration for PDF WorkDesk
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes
	PreviewDPI   float64

	// Session and fetch configuration
	SessionTTL     time.Duration
	MaxSessions    int
	FetchTimeout   time.Duration
	FetchCacheSize int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeServer,
		Host:           DefaultHost,
		Port:           DefaultPort,
		PDFDirectory:   currentDir,
		MaxFileSize:    DefaultMaxFileSize,
		PreviewDPI:     DefaultPreviewDPI,
		SessionTTL:     DefaultSessionTTL,
		MaxSessions:    DefaultMaxSessions,
		FetchTimeout:   DefaultFetchTimeout,
		FetchCacheSize: DefaultFetchCacheSize,
		Version:        "1.0.0",
		ServerName:     "pdf-workdesk",
		LogLevel:       DefaultLogLevel,
	}
}

// DefineFlags registers every configuration flag on fs
func DefineFlags(fs *pflag.FlagSet) {
	cfg := DefaultConfig()
	fs.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("dir", cfg.PDFDirectory, "Directory containing PDF files (MCP tools)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.Duration("sessionttl", cfg.SessionTTL, "Idle time after which a session is discarded")
	fs.Int("maxsessions", cfg.MaxSessions, "Maximum number of concurrent sessions")
	fs.Duration("fetchtimeout", cfg.FetchTimeout, "Timeout for downloading a PDF from a URL")
	fs.Int("fetchcachesize", cfg.FetchCacheSize, "Number of downloaded PDFs kept in memory (0 disables)")
	fs.Float64("previewdpi", cfg.PreviewDPI, "Resolution of page previews")
}

// Load builds the configuration from defaults, PDF_WORKDESK_* environment
// variables and the flags in fs, in increasing order of precedence
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	if err := bindFlagsToViper(v, fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("sessionttl", cfg.SessionTTL)
	v.SetDefault("maxsessions", cfg.MaxSessions)
	v.SetDefault("fetchtimeout", cfg.FetchTimeout)
	v.SetDefault("fetchcachesize", cfg.FetchCacheSize)
	v.SetDefault("previewdpi", cfg.PreviewDPI)
}

// bindFlagsToViper binds the flags that exist in fs
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for _, key := range Keys() {
		if f := fs.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Keys returns every configuration key
func Keys() []string {
	return []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize",
		"sessionttl", "maxsessions", "fetchtimeout", "fetchcachesize", "previewdpi",
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.SessionTTL = v.GetDuration("sessionttl")
	cfg.MaxSessions = v.GetInt("maxsessions")
	cfg.FetchTimeout = v.GetDuration("fetchtimeout")
	cfg.FetchCacheSize = v.GetInt("fetchcachesize")
	cfg.PreviewDPI = v.GetFloat64("previewdpi")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// A missing directory is allowed so placeholders like ${workspaceRoot}
	// can be resolved later; an existing one must be a directory.
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	if info, err := os.Stat(c.PDFDirectory); err == nil && !info.IsDir() {
		return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.MaxSessions <= 0 {
		return errors.New("maximum sessions must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.FetchCacheSize < 0 {
		return errors.New("fetch cache size cannot be negative")
	}
	if c.PreviewDPI < MinPreviewDPI || c.PreviewDPI > MaxPreviewDPI {
		return fmt.Errorf("preview dpi must be between %d and %d", MinPreviewDPI, MaxPreviewDPI)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"SessionTTL: %s, MaxSessions: %d, FetchTimeout: %s, FetchCacheSize: %d, PreviewDPI: %g}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.SessionTTL, c.MaxSessions, c.FetchTimeout, c.FetchCacheSize, c.PreviewDPI)
}

// IsServerMode returns true if the HTTP API should be served
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the MCP server runs over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
